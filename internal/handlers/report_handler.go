package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ReportHandler lets users report posts and admins moderate reports and accounts.
type ReportHandler struct {
	reports repositories.ReportRepository
	users   *services.UserService
	posts   *services.PostService
}

func NewReportHandler(reports repositories.ReportRepository, users *services.UserService, posts *services.PostService) *ReportHandler {
	return &ReportHandler{reports: reports, users: users, posts: posts}
}

func (h *ReportHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("", h.ReportPost, middleware.RequireAuth())
}

// RegisterAdminRoutes expects g to require an admin.
func (h *ReportHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/reported-posts", h.GetReports)
	g.DELETE("/reported-posts", h.ClearReport)
	g.GET("/users", h.GetUsers)
	g.PUT("/users/:userId/activate", h.Activate)
	g.PUT("/users/:userId/deactivate", h.Deactivate)
}

func (h *ReportHandler) ReportPost(c echo.Context) error {
	var req models.ReportPostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if _, err := h.posts.Readable(c.Request().Context(), middleware.CallerFrom(c), req.PostID); err != nil {
		return err
	}
	report := &models.ReportedPost{
		PostID: req.PostID,
		UserID: middleware.PrincipalFrom(c).UserID,
		Reason: req.Reason,
	}
	if err := h.reports.CreateReport(c.Request().Context(), report); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Report post successfully", report)
}

// GetReports supports titleSearch and userSearch filters.
func (h *ReportHandler) GetReports(c echo.Context) error {
	var q models.ReportQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	q.ApplyDefaults()
	reports, total, err := h.reports.ListReports(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get reported posts successfully", reports, q.PageQuery, total)
}

func (h *ReportHandler) ClearReport(c echo.Context) error {
	var req models.ClearReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.reports.DeleteReport(c.Request().Context(), req.PostID, req.UserID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Clear reported post successfully", nil)
}

// GetUsers includes deactivated accounts.
func (h *ReportHandler) GetUsers(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	users, total, err := h.users.List(c.Request().Context(), q, true)
	if err != nil {
		return err
	}
	return respondPage(c, "Get users successfully", users, q, total)
}

func (h *ReportHandler) Activate(c echo.Context) error {
	return h.setActive(c, true, "Activate user successfully")
}

func (h *ReportHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false, "Deactivate user successfully")
}

func (h *ReportHandler) setActive(c echo.Context, active bool, message string) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.users.SetActive(c.Request().Context(), middleware.PrincipalFrom(c), id, active)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, message, user)
}
