package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type InvitationHandler struct {
	publications *services.PublicationService
}

func NewInvitationHandler(publications *services.PublicationService) *InvitationHandler {
	return &InvitationHandler{publications: publications}
}

// RegisterInvitationRoutes expects g to require authentication.
func (h *InvitationHandler) RegisterInvitationRoutes(g *echo.Group) {
	g.POST("", h.Invite)
	g.GET("/:invitationId", h.GetInvitation)
	g.PUT("/:invitationId/accept", h.Accept)
	g.PUT("/:invitationId/decline", h.Decline)
	g.DELETE("/:invitationId", h.DeleteInvitation)
}

func (h *InvitationHandler) Invite(c echo.Context) error {
	var req models.InvitationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	inv, err := h.publications.Invite(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Send invitation successfully", inv)
}

func (h *InvitationHandler) GetInvitation(c echo.Context) error {
	id, err := idParam(c, "invitationId")
	if err != nil {
		return err
	}
	inv, err := h.publications.GetInvitation(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get invitation successfully", inv)
}

func (h *InvitationHandler) Accept(c echo.Context) error {
	id, err := idParam(c, "invitationId")
	if err != nil {
		return err
	}
	inv, err := h.publications.Accept(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Accept invitation successfully", inv)
}

func (h *InvitationHandler) Decline(c echo.Context) error {
	id, err := idParam(c, "invitationId")
	if err != nil {
		return err
	}
	inv, err := h.publications.Decline(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Decline invitation successfully", inv)
}

func (h *InvitationHandler) DeleteInvitation(c echo.Context) error {
	id, err := idParam(c, "invitationId")
	if err != nil {
		return err
	}
	if err := h.publications.DeleteInvitation(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete invitation successfully", nil)
}
