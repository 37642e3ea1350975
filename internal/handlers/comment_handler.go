package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	posts *services.PostService
}

func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment routes under /posts.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/:postId/comments", h.GetComments)
	g.POST("/:postId/comments", h.CreateComment, middleware.RequireAuth())
	g.PUT("/:postId/comments/:commentId", h.UpdateComment, middleware.RequireAuth())
	g.DELETE("/:postId/comments/:commentId", h.DeleteComment, middleware.RequireAuth())
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	comments, total, err := h.posts.ListComments(c.Request().Context(), middleware.CallerFrom(c), postID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get comments successfully", comments, q, total)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	var req models.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.AddComment(c.Request().Context(), middleware.PrincipalFrom(c), postID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Create comment successfully", comment)
}

func (h *CommentHandler) commentIDs(c echo.Context) (uint, uint, error) {
	postID, err := idParam(c, "postId")
	if err != nil {
		return 0, 0, err
	}
	commentID, err := idParam(c, "commentId")
	return postID, commentID, err
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	postID, commentID, err := h.commentIDs(c)
	if err != nil {
		return err
	}
	var req models.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.UpdateComment(c.Request().Context(), middleware.PrincipalFrom(c), postID, commentID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Update comment successfully", comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	postID, commentID, err := h.commentIDs(c)
	if err != nil {
		return err
	}
	if err := h.posts.DeleteComment(c.Request().Context(), middleware.PrincipalFrom(c), postID, commentID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete comment successfully", nil)
}
