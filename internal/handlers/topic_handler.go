package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TopicHandler serves the topic catalog; writes are admin only.
type TopicHandler struct {
	topics repositories.TopicRepository
}

func NewTopicHandler(topics repositories.TopicRepository) *TopicHandler {
	return &TopicHandler{topics: topics}
}

func (h *TopicHandler) RegisterTopicRoutes(g *echo.Group) {
	g.GET("", h.ListTopics)
	g.GET("/:topicId", h.GetTopic)
	g.POST("", h.CreateTopic, middleware.RequireAuth())
	g.PUT("/:topicId", h.UpdateTopic, middleware.RequireAuth())
	g.DELETE("/:topicId", h.DeleteTopic, middleware.RequireAuth())
}

func (h *TopicHandler) ListTopics(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	topics, total, err := h.topics.ListTopics(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get topics successfully", topics, q, total)
}

func (h *TopicHandler) GetTopic(c echo.Context) error {
	id, err := idParam(c, "topicId")
	if err != nil {
		return err
	}
	topic, err := h.topics.GetTopic(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get topic successfully", topic)
}

func (h *TopicHandler) CreateTopic(c echo.Context) error {
	if err := manageCatalog(c); err != nil {
		return err
	}
	var req models.TopicRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	topic := &models.Topic{Name: req.Name}
	if err := h.topics.CreateTopic(c.Request().Context(), topic); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Create topic successfully", topic)
}

func (h *TopicHandler) UpdateTopic(c echo.Context) error {
	if err := manageCatalog(c); err != nil {
		return err
	}
	id, err := idParam(c, "topicId")
	if err != nil {
		return err
	}
	var req models.TopicRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	topic, err := h.topics.GetTopic(ctx, id)
	if err != nil {
		return err
	}
	topic.Name = req.Name
	if err := h.topics.UpdateTopic(ctx, topic); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Update topic successfully", topic)
}

func (h *TopicHandler) DeleteTopic(c echo.Context) error {
	if err := manageCatalog(c); err != nil {
		return err
	}
	id, err := idParam(c, "topicId")
	if err != nil {
		return err
	}
	if err := h.topics.DeleteTopic(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete topic successfully", nil)
}
