package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/authz"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("", h.GetPosts)
	g.GET("/:slug", h.GetPost)
	g.POST("", h.CreatePost, middleware.RequireAuth())
	g.PUT("/:postId", h.UpdatePost, middleware.RequireAuth())
	g.DELETE("/:postId", h.DeletePost, middleware.RequireAuth())
	g.POST("/:postId/publish", h.PublishPost, middleware.RequireAuth())
	g.POST("/:postId/views", h.RecordView, middleware.RequireAuth())
}

// GetPosts lists published posts, ranked when a search term is given.
func (h *PostHandler) GetPosts(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	posts, total, err := h.posts.ListPublished(c.Request().Context(), 0, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get posts successfully", posts, q, total)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.GetBySlug(c.Request().Context(), middleware.CallerFrom(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get post successfully", post)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.posts.CreatePost(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Create post successfully", post)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.posts.UpdatePost(c.Request().Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Update post successfully", post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete post successfully", nil)
}

func (h *PostHandler) PublishPost(c echo.Context) error {
	id, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	post, err := h.posts.Publish(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Publish post successfully", post)
}

// RecordView counts one view per user. Authors viewing their own post and
// repeated views both succeed without writing anything.
func (h *PostHandler) RecordView(c echo.Context) error {
	id, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	created, err := h.posts.RecordView(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if errors.Is(err, authz.ErrAuthorView) {
		return respond(c, http.StatusOK, "The current user is also the author", echo.Map{"created": false})
	}
	if err != nil {
		return err
	}
	if !created {
		return respond(c, http.StatusOK, "Post already viewed", echo.Map{"created": false})
	}
	return respond(c, http.StatusCreated, "View post successfully", echo.Map{"created": true})
}
