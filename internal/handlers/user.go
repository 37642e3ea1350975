package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler serves public user listings and profiles.
type UserHandler struct {
	users  *services.UserService
	social *services.SocialService
	posts  *services.PostService
}

func NewUserHandler(users *services.UserService, social *services.SocialService, posts *services.PostService) *UserHandler {
	return &UserHandler{users: users, social: social, posts: posts}
}

func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("", h.ListUsers)
	g.GET("/user/:userId", h.GetUser, middleware.RequireAuth())
	g.DELETE("/user/:userId", h.DeleteUser, middleware.RequireAuth())
	g.GET("/user/:username/profile", h.GetProfile)
	g.GET("/user/:username/posts", h.GetPosts)
	g.GET("/user/:username/followers", h.GetFollowers)
	g.GET("/user/:username/followings", h.GetFollowings)
}

// ListUsers lists active users, ranked when a search term is given.
func (h *UserHandler) ListUsers(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	users, total, err := h.users.List(c.Request().Context(), q, false)
	if err != nil {
		return err
	}
	return respondPage(c, "Get users successfully", users, q, total)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get user successfully", user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Delete user successfully", nil)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.users.ActiveUser(ctx, c.Param("username"))
	if err != nil {
		return err
	}
	followers, followings, err := h.social.Counts(ctx, user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Get profile successfully", services.ProfileView{
		User:       user,
		Followers:  followers,
		Followings: followings,
	})
}

func (h *UserHandler) GetPosts(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	user, err := h.users.ActiveUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	posts, total, err := h.posts.ListPublished(c.Request().Context(), user.ID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get posts successfully", posts, q, total)
}

func (h *UserHandler) GetFollowers(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	user, err := h.users.ActiveUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	users, total, err := h.social.Followers(c.Request().Context(), user.ID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get followers successfully", users, q, total)
}

func (h *UserHandler) GetFollowings(c echo.Context) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	user, err := h.users.ActiveUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	users, total, err := h.social.Followings(c.Request().Context(), user.ID, q)
	if err != nil {
		return err
	}
	return respondPage(c, "Get followings successfully", users, q, total)
}
