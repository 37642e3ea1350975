package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and credential checks.
type AuthHandler struct {
	users        *services.UserService
	publications *services.PublicationService
}

func NewAuthHandler(users *services.UserService, publications *services.PublicationService) *AuthHandler {
	return &AuthHandler{users: users, publications: publications}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.GET("/validate-token", h.ValidateToken, middleware.RequireAuth())
	g.GET("/validate-admin", h.ValidateToken, middleware.RequireAdmin())
	g.GET("/validate-owner/:publicationId", h.ValidateOwner, middleware.RequireAuth())
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Register successfully", user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.users.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successfully", session)
}

// FirebaseLogin exchanges a Firebase ID token for a local JWT.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.users.FirebaseLogin(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successfully", session)
}

func (h *AuthHandler) ValidateToken(c echo.Context) error {
	return respond(c, http.StatusOK, "Token is valid", middleware.PrincipalFrom(c))
}

func (h *AuthHandler) ValidateOwner(c echo.Context) error {
	id, err := idParam(c, "publicationId")
	if err != nil {
		return err
	}
	if _, err := h.publications.RequireOwner(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User is an owner of this publication", middleware.PrincipalFrom(c))
}
