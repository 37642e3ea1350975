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

// ReadingListHandler handles the caller's reading lists and the posts saved in them.
type ReadingListHandler struct {
	readings repositories.ReadingListRepository
	posts    *services.PostService
}

func NewReadingListHandler(readings repositories.ReadingListRepository, posts *services.PostService) *ReadingListHandler {
	return &ReadingListHandler{readings: readings, posts: posts}
}

// RegisterReadingListRoutes expects g to require authentication.
func (h *ReadingListHandler) RegisterReadingListRoutes(g *echo.Group) {
	g.GET("/reading-lists", h.GetLists)
	g.POST("/reading-lists", h.CreateList)
	g.PUT("/reading-lists/:readingListId", h.UpdateList)
	g.DELETE("/reading-lists/:readingListId", h.DeleteList)
	g.GET("/reading-lists/:readingListId/saved-posts", h.GetSavedPosts)
	g.POST("/reading-lists/:readingListId/saved-posts", h.SavePost)
	g.DELETE("/reading-lists/:readingListId/saved-posts/:postId", h.UnsavePost)
}

// list loads the reading list from the path and checks action against its owner.
func (h *ReadingListHandler) list(c echo.Context, action authz.Action) (*models.ReadingList, error) {
	id, err := idParam(c, "readingListId")
	if err != nil {
		return nil, err
	}
	list, err := h.readings.GetList(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(middleware.PrincipalFrom(c), authz.ResourceReadingList, action, authz.Owners(list.UserID)); err != nil {
		return nil, err
	}
	return list, nil
}

func (h *ReadingListHandler) GetLists(c echo.Context) error {
	lists, err := h.readings.ListByUser(c.Request().Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get reading lists successfully", lists)
}

func (h *ReadingListHandler) CreateList(c echo.Context) error {
	var req models.ReadingListRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list := &models.ReadingList{UserID: middleware.PrincipalFrom(c).UserID}
	if err := copier.Copy(list, &req); err != nil {
		return errors.Wrap(err, "copy reading list")
	}
	if err := h.readings.CreateList(c.Request().Context(), list); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Create reading list successfully", list)
}

func (h *ReadingListHandler) UpdateList(c echo.Context) error {
	var req models.ReadingListRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.list(c, authz.ActionUpdate)
	if err != nil {
		return err
	}
	if err := copier.Copy(list, &req); err != nil {
		return errors.Wrap(err, "copy reading list")
	}
	if err := h.readings.UpdateList(c.Request().Context(), list); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Update reading list successfully", list)
}

func (h *ReadingListHandler) DeleteList(c echo.Context) error {
	list, err := h.list(c, authz.ActionDelete)
	if err != nil {
		return err
	}
	if err := h.readings.DeleteList(c.Request().Context(), list.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete reading list successfully", nil)
}

func (h *ReadingListHandler) GetSavedPosts(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	list, err := h.list(c, authz.ActionRead)
	if err != nil {
		return err
	}
	saved, total, err := h.readings.ListSavedPosts(c.Request().Context(), list.ID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get saved posts successfully", saved, q, total)
}

func (h *ReadingListHandler) SavePost(c echo.Context) error {
	var req models.SavePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.list(c, authz.ActionUpdate)
	if err != nil {
		return err
	}
	// drafts of other authors are reported as missing
	if _, err := h.posts.Readable(c.Request().Context(), middleware.CallerFrom(c), req.PostID); err != nil {
		return err
	}
	saved := &models.SavedPost{ReadingListID: list.ID, PostID: req.PostID}
	if err := h.readings.SavePost(c.Request().Context(), saved); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Save post successfully", saved)
}

func (h *ReadingListHandler) UnsavePost(c echo.Context) error {
	list, err := h.list(c, authz.ActionUpdate)
	if err != nil {
		return err
	}
	postID, err := idParam(c, "postId")
	if err != nil {
		return err
	}
	if err := h.readings.RemoveSavedPost(c.Request().Context(), list.ID, postID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Remove saved post successfully", nil)
}
