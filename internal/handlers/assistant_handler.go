package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/assistant"
	"github.com/labstack/echo/v4"
)

type AssistantHandler struct {
	generator assistant.Generator
}

func NewAssistantHandler(generator assistant.Generator) *AssistantHandler {
	return &AssistantHandler{generator: generator}
}

// RegisterAssistantRoutes expects g to require authentication.
func (h *AssistantHandler) RegisterAssistantRoutes(g *echo.Group) {
	g.POST("", h.Generate)
}

func (h *AssistantHandler) Generate(c echo.Context) error {
	var req assistant.Request
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.generator.Generate(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Generate text successfully", result)
}
