package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MeHandler serves the caller's own profile, posts and social graph.
type MeHandler struct {
	users    *services.UserService
	social   *services.SocialService
	posts    *services.PostService
	readings repositories.ReadingListRepository
}

func NewMeHandler(users *services.UserService, social *services.SocialService, posts *services.PostService, readings repositories.ReadingListRepository) *MeHandler {
	return &MeHandler{users: users, social: social, posts: posts, readings: readings}
}

// RegisterMeRoutes expects g to require authentication.
func (h *MeHandler) RegisterMeRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/followers", h.GetFollowers)
	g.GET("/followings", h.GetFollowings)
	g.GET("/saved-posts", h.GetSavedPosts)
	g.GET("/posts", h.GetPosts)
	g.GET("/feed", h.GetFeed)
}

func (h *MeHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	p := middleware.PrincipalFrom(c)
	user, err := h.users.Profile(ctx, p)
	if err != nil {
		return err
	}
	followers, followings, err := h.social.Counts(ctx, p.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get profile successfully", services.ProfileView{
		User:       user,
		Followers:  followers,
		Followings: followings,
	})
}

func (h *MeHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Update profile successfully", user)
}

func (h *MeHandler) GetStatistics(c echo.Context) error {
	stats, err := h.users.Statistics(c.Request().Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get statistics successfully", stats)
}

func (h *MeHandler) GetFollowers(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	users, total, err := h.social.Followers(c.Request().Context(), middleware.PrincipalFrom(c).UserID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get followers successfully", users, q, total)
}

func (h *MeHandler) GetFollowings(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	users, total, err := h.social.Followings(c.Request().Context(), middleware.PrincipalFrom(c).UserID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get followings successfully", users, q, total)
}

// GetSavedPosts lists saved posts across all of the caller's reading lists.
func (h *MeHandler) GetSavedPosts(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	saved, total, err := h.readings.ListSavedPostsForUser(c.Request().Context(), middleware.PrincipalFrom(c).UserID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get saved posts successfully", saved, q, total)
}

// GetPosts lists the caller's own posts, optionally filtered by ?status=.
func (h *MeHandler) GetPosts(c echo.Context) error {
	var q models.PostListQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	q.ApplyDefaults()
	posts, total, err := h.posts.ListMine(c.Request().Context(), middleware.PrincipalFrom(c), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get posts successfully", posts, q.PageQuery, total)
}

func (h *MeHandler) GetFeed(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	posts, total, err := h.posts.Feed(c.Request().Context(), middleware.PrincipalFrom(c), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get feed successfully", posts, q, total)
}
