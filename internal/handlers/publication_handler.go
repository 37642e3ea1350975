package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PublicationHandler handles publications with their posts, members and invitations.
type PublicationHandler struct {
	publications *services.PublicationService
	posts        *services.PostService
}

func NewPublicationHandler(publications *services.PublicationService, posts *services.PostService) *PublicationHandler {
	return &PublicationHandler{publications: publications, posts: posts}
}

func (h *PublicationHandler) RegisterPublicationRoutes(g *echo.Group) {
	g.GET("", h.ListPublications)
	g.GET("/:publicationId", h.GetPublication)
	g.POST("", h.CreatePublication, middleware.RequireAuth())
	g.PUT("/:publicationId", h.UpdatePublication, middleware.RequireAuth())
	g.DELETE("/:publicationId", h.DeletePublication, middleware.RequireAuth())

	g.GET("/:publicationId/posts", h.GetPosts)
	g.POST("/:publicationId/posts", h.SubmitPost, middleware.RequireAuth())
	g.PUT("/:publicationId/posts/:slug/approve", h.ApprovePost, middleware.RequireAuth())
	g.DELETE("/:publicationId/posts/:postId", h.RemovePost, middleware.RequireAuth())

	g.GET("/:publicationId/members", h.GetMembers)
	g.DELETE("/:publicationId/members/:userId", h.RemoveMember, middleware.RequireAuth())
	g.GET("/:publicationId/invitations", h.GetInvitations, middleware.RequireAuth())
}

func (h *PublicationHandler) ListPublications(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	pubs, total, err := h.publications.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get publications successfully", pubs, q, total)
}

func (h *PublicationHandler) GetPublication(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	pub, err := h.publications.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get publication successfully", pub)
}

func (h *PublicationHandler) CreatePublication(c echo.Context) error {
	var req models.PublicationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pub, err := h.publications.Create(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Create publication successfully", pub)
}

func (h *PublicationHandler) UpdatePublication(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	var req models.PublicationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pub, err := h.publications.Update(c.Request().Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Update publication successfully", pub)
}

func (h *PublicationHandler) DeletePublication(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	if err := h.publications.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete publication successfully", nil)
}

// GetPosts lists the publication's published posts; owners also see pending ones.
func (h *PublicationHandler) GetPosts(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	posts, total, err := h.posts.ListPublicationPosts(c.Request().Context(), middleware.CallerFrom(c), id, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get publication posts successfully", posts, q, total)
}

func (h *PublicationHandler) SubmitPost(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.posts.SubmitToPublication(c.Request().Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Submit post successfully", post)
}

func (h *PublicationHandler) ApprovePost(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	post, err := h.posts.Approve(c.Request().Context(), middleware.PrincipalFrom(c), id, c.Param("slug"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Approve post successfully", post)
}

func (h *PublicationHandler) RemovePost(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	postID, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	if err := h.posts.RemovePublicationPost(c.Request().Context(), middleware.PrincipalFrom(c), id, postID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete publication post successfully", nil)
}

func (h *PublicationHandler) GetMembers(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	members, err := h.publications.Members(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get members successfully", members)
}

func (h *PublicationHandler) RemoveMember(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	if err := h.publications.RemoveMember(c.Request().Context(), middleware.PrincipalFrom(c), id, userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Remove member successfully", nil)
}

func (h *PublicationHandler) GetInvitations(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	invitations, err := h.publications.Invitations(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get invitations successfully", invitations)
}
