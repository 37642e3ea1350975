package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/authz"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ReactionHandler handles post reactions and the reaction type catalog.
type ReactionHandler struct {
	posts     *services.PostService
	reactions repositories.ReactionRepository
}

func NewReactionHandler(posts *services.PostService, reactions repositories.ReactionRepository) *ReactionHandler {
	return &ReactionHandler{posts: posts, reactions: reactions}
}

// RegisterPostReactionRoutes registers reaction routes under /posts.
func (h *ReactionHandler) RegisterPostReactionRoutes(g *echo.Group) {
	g.POST("/:postId/reactions", h.React, middleware.RequireAuth())
	g.DELETE("/:postId/reactions", h.Unreact, middleware.RequireAuth())
}

// RegisterCatalogRoutes registers the reaction type catalog under /reactions.
func (h *ReactionHandler) RegisterCatalogRoutes(g *echo.Group) {
	g.GET("", h.ListTypes)
	g.POST("", h.CreateType, middleware.RequireAuth())
	g.PUT("/:reactionTypeId", h.UpdateType, middleware.RequireAuth())
	g.DELETE("/:reactionTypeId", h.DeleteType, middleware.RequireAuth())
}

func (h *ReactionHandler) React(c echo.Context) error {
	postID, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	var req models.ReactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reaction, err := h.posts.React(c.Request().Context(), middleware.PrincipalFrom(c), postID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "React post successfully", reaction)
}

func (h *ReactionHandler) Unreact(c echo.Context) error {
	postID, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	if err := h.posts.Unreact(c.Request().Context(), middleware.PrincipalFrom(c), postID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Unreact post successfully", nil)
}

func (h *ReactionHandler) ListTypes(c echo.Context) error {
	types, err := h.reactions.ListTypes(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get reactions successfully", types)
}

func manageCatalog(c echo.Context) error {
	return authz.Check(middleware.PrincipalFrom(c), authz.ResourceCatalog, authz.ActionManage, authz.Subject{})
}

func (h *ReactionHandler) CreateType(c echo.Context) error {
	if err := manageCatalog(c); err != nil {
		return err
	}
	var req models.ReactionTypeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rt := &models.ReactionType{Name: req.Name, ImageURL: req.ImageURL}
	if err := h.reactions.CreateType(c.Request().Context(), rt); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Create reaction successfully", rt)
}

func (h *ReactionHandler) UpdateType(c echo.Context) error {
	if err := manageCatalog(c); err != nil {
		return err
	}
	id, err := idParam(c, "reactionTypeId")
	if err != nil {
		return err
	}
	var req models.ReactionTypeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	rt, err := h.reactions.GetType(ctx, id)
	if err != nil {
		return err
	}
	if err := copier.Copy(rt, &req); err != nil {
		return errors.Wrap(err, "copy reaction type")
	}
	if err := h.reactions.UpdateType(ctx, rt); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Update reaction successfully", rt)
}

func (h *ReactionHandler) DeleteType(c echo.Context) error {
	if err := manageCatalog(c); err != nil {
		return err
	}
	id, err := idParam(c, "reactionTypeId")
	if err != nil {
		return err
	}
	if err := h.reactions.DeleteType(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete reaction successfully", nil)
}
