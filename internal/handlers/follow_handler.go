package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	social *services.SocialService
}

func NewFollowHandler(social *services.SocialService) *FollowHandler {
	return &FollowHandler{social: social}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/user/:userId/follow", h.FollowUser, middleware.RequireAuth())
	g.DELETE("/user/:userId/follow", h.UnfollowUser, middleware.RequireAuth())
}

func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	follow, err := h.social.Follow(c.Request().Context(), middleware.PrincipalFrom(c), targetID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Follow user successfully", follow)
}

func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	if err := h.social.Unfollow(c.Request().Context(), middleware.PrincipalFrom(c), targetID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Unfollow user successfully", nil)
}
