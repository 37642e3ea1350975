package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
}

func NewNotificationHandler(notifications repositories.NotificationRepository, users repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, users: users}
}

// RegisterNotificationRoutes expects g to require authentication.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:notificationId/read", h.MarkAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor"`
}

// enrich attaches the actor to each notification. Actors that no longer
// exist are left nil.
func (h *NotificationHandler) enrich(c echo.Context, notifications []models.Notification) ([]EnrichedNotification, error) {
	enriched := make([]EnrichedNotification, len(notifications))
	cache := make(map[uint]*models.UserCompact)
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		actor, ok := cache[n.ActorID]
		if !ok {
			user, err := h.users.GetUserByID(c.Request().Context(), n.ActorID)
			switch {
			case err == nil:
				compact := user.ToCompact()
				actor = &compact
			case !errs.Is(err, errs.KindNotFound):
				return nil, err
			}
			cache[n.ActorID] = actor
		}
		enriched[i].Actor = actor
	}
	return enriched, nil
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	notifications, total, err := h.notifications.ListByRecipient(c.Request().Context(), middleware.PrincipalFrom(c).UserID, q)
	if err != nil {
		return err
	}
	enriched, err := h.enrich(c, notifications)
	if err != nil {
		return err
	}
	return respondPage(c, "Get notifications successfully", enriched, q, total)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.GetUnreadCount(c.Request().Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get unread count successfully", echo.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := idParam(c, "notificationId")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAsRead(c.Request().Context(), id, middleware.PrincipalFrom(c).UserID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Mark notification as read successfully", nil)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.notifications.MarkAllAsRead(c.Request().Context(), middleware.PrincipalFrom(c).UserID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Mark all notifications as read successfully", nil)
}
