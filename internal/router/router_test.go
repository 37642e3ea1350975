package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/inkwell/backend/internal/assistant"
	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/handlers"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifier"
	"github.com/anonto42/inkwell/backend/internal/repositories/repotest"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	err     error
	buckets []string
}

func (u *fakeUploader) Upload(_ context.Context, bucket, object string, r io.Reader, _ int64, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	u.buckets = append(u.buckets, bucket)
	return "https://cdn.example.com/" + bucket + "/" + object, nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(_ context.Context, req assistant.Request) (*assistant.Result, error) {
	if req.Title == "" && req.Content == "" {
		return nil, errs.Validation("title or content is required")
	}
	return &assistant.Result{GeneratedText: "# " + req.Title, Format: "markdown"}, nil
}

type app struct {
	e          *echo.Echo
	store      *repotest.Store
	tokens     *auth.TokenIssuer
	dispatcher *notifier.Dispatcher
	uploader   *fakeUploader
	logs       *test.Hook
	health     error
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Meta    *models.PageMeta `json:"meta"`
	Errors  []string         `json:"errors"`
}

func newApp(t *testing.T) *app {
	t.Helper()
	store := repotest.NewStore()
	log, hook := test.NewNullLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	queue := notifier.NewRedisQueue(client)

	repos := &Repositories{
		Users:         store.Users(),
		Posts:         store.Posts(),
		Contents:      store.Contents(),
		Comments:      store.Comments(),
		Reactions:     store.Reactions(),
		Follows:       store.Follows(),
		Notifications: store.Notifications(),
		Publications:  store.Publications(),
		ReadingLists:  store.ReadingLists(),
		Topics:        store.Topics(),
		Reports:       store.Reports(),
	}

	a := &app{
		e:          echo.New(),
		store:      store,
		tokens:     auth.NewTokenIssuer("test-secret", time.Hour),
		dispatcher: notifier.NewDispatcher(queue, repos.Follows, repos.Notifications, log, time.Second),
		uploader:   &fakeUploader{},
		logs:       hook,
	}
	err := SetupRoutes(a.e, Deps{
		Repos:            repos,
		Notifier:         notifier.New(queue),
		Tokens:           a.tokens,
		Uploader:         a.uploader,
		PostImagesBucket: "post-images",
		AvatarsBucket:    "avatars",
		Assistant:        fakeGenerator{},
		Health: map[string]handlers.Check{
			"postgres": func(context.Context) error { return a.health },
		},
		Log: log,
	})
	require.NoError(t, err)
	return a
}

func (a *app) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return a.send(t, req, token)
}

func (a *app) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

// signup registers and logs in a user through the API.
func (a *app) signup(t *testing.T, username string) (uint, string) {
	t.Helper()
	rec, _ := a.do(t, http.MethodPost, "/register", "", echo.Map{
		"username":             username,
		"email":                username + "@example.com",
		"password":             "secret123",
		"passwordConfirmation": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := a.do(t, http.MethodPost, "/login", "", echo.Map{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.User.ID, session.Token
}

func (a *app) admin(t *testing.T) string {
	t.Helper()
	u := &models.User{Username: "root", Email: "root@example.com", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, a.store.Users().CreateUser(context.Background(), u))
	token, err := a.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func (a *app) createPost(t *testing.T, token, title string, status models.PostStatus) models.Post {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/posts", token, echo.Map{
		"title":   title,
		"content": json.RawMessage(`{"blocks":[]}`),
		"status":  status,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))
	return post
}

func TestRegisterAndLogin(t *testing.T) {
	a := newApp(t)
	_, token := a.signup(t, "alice")

	rec, env := a.do(t, http.MethodPost, "/register", "", echo.Map{
		"username":             "alice",
		"email":                "ALICE@example.com",
		"password":             "secret123",
		"passwordConfirmation": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.ElementsMatch(t, []string{"Username already exists", "Email already exists"}, env.Errors)

	rec, env = a.do(t, http.MethodPost, "/login", "", echo.Map{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = a.do(t, http.MethodGet, "/validate-token", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.do(t, http.MethodGet, "/validate-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = a.do(t, http.MethodGet, "/validate-token", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = a.do(t, http.MethodGet, "/validate-admin", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", env.Message)
}

func TestValidationReportsEveryError(t *testing.T) {
	a := newApp(t)

	rec, env := a.do(t, http.MethodPost, "/register", "", echo.Map{"email": "nope", "password": "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{
		"username must not be empty",
		"email must be a valid email",
		"password must be at least 6 characters",
		"passwordConfirmation must not be empty",
	}, env.Errors)
	assert.Equal(t, env.Errors[0], env.Message)

	rec, env = a.do(t, http.MethodGet, "/posts?page=-1&limit=500", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.Errors, 2)

	rec, env = a.do(t, http.MethodPost, "/login", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload", env.Message)
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	a := newApp(t)
	_, alice := a.signup(t, "alice")
	_, bob := a.signup(t, "bob")

	draft := a.createPost(t, alice, "Hello World", models.PostDraft)
	assert.Equal(t, models.PostDraft, draft.Status)
	path := "/posts/" + strconv.Itoa(int(draft.ID))

	rec, _ := a.do(t, http.MethodGet, "/posts/"+draft.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "drafts are hidden from anonymous readers")

	rec, _ = a.do(t, http.MethodGet, "/posts/"+draft.Slug, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "authors see their own drafts")

	rec, _ = a.do(t, http.MethodPut, path, bob, echo.Map{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = a.do(t, http.MethodPost, path+"/publish", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := a.do(t, http.MethodGet, "/posts/"+draft.Slug, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"blocks":[]}`, gjsonField(t, env.Data, "content"))

	rec, env = a.do(t, http.MethodPost, path+"/views", bob, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, env = a.do(t, http.MethodPost, path+"/views", bob, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Post already viewed", env.Message)
	rec, env = a.do(t, http.MethodPost, path+"/views", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The current user is also the author", env.Message)

	rec, env = a.do(t, http.MethodGet, "/posts?search=hello", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 1, env.Meta.TotalItems)

	rec, _ = a.do(t, http.MethodPost, "/posts", alice, echo.Map{
		"title":   "Hello World",
		"content": json.RawMessage(`{"blocks":[]}`),
	})
	assert.Equal(t, http.StatusConflict, rec.Code, "titles are unique per author")

	rec, _ = a.do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.do(t, http.MethodGet, "/posts/"+draft.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func gjsonField(t *testing.T, raw json.RawMessage, field string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return string(m[field])
}

func TestFollowNotificationReachesRecipient(t *testing.T) {
	a := newApp(t)
	aliceID, alice := a.signup(t, "alice")
	bobID, bob := a.signup(t, "bob")

	rec, _ := a.do(t, http.MethodPost, "/users/user/"+strconv.Itoa(int(bobID))+"/follow", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = a.do(t, http.MethodPost, "/users/user/"+strconv.Itoa(int(bobID))+"/follow", alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env := a.do(t, http.MethodGet, "/me/notifications/unread-count", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0}`, string(env.Data), "fan-out does not happen inside the request")

	n, err := a.dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, env = a.do(t, http.MethodGet, "/me/notifications", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []struct {
		Type    models.NotificationType `json:"type"`
		Message string                  `json:"message"`
		Actor   *models.UserCompact     `json:"actor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationNewFollow, items[0].Type)
	assert.Equal(t, "alice started following you", items[0].Message)
	require.NotNil(t, items[0].Actor)
	assert.Equal(t, aliceID, items[0].Actor.ID)

	rec, _ = a.do(t, http.MethodGet, "/users/user/bob/followers", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.do(t, http.MethodDelete, "/users/user/"+strconv.Itoa(int(bobID))+"/follow", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	a := newApp(t)
	aliceID, alice := a.signup(t, "alice")
	root := a.admin(t)

	rec, _ := a.do(t, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = a.do(t, http.MethodGet, "/admin/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = a.do(t, http.MethodGet, "/admin/users", root, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/topics", alice, echo.Map{"name": "Go"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = a.do(t, http.MethodPost, "/topics", root, echo.Map{"name": "Go"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = a.do(t, http.MethodPut, "/admin/users/"+strconv.Itoa(int(aliceID))+"/deactivate", root, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = a.do(t, http.MethodGet, "/validate-token", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "tokens of deactivated users stop resolving")
}

func TestReactionsAndReports(t *testing.T) {
	a := newApp(t)
	_, alice := a.signup(t, "alice")
	_, bob := a.signup(t, "bob")
	root := a.admin(t)

	rec, env := a.do(t, http.MethodPost, "/reactions", root, echo.Map{"name": "clap", "imageUrl": "https://cdn.example.com/clap.png"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var clap models.ReactionType
	require.NoError(t, json.Unmarshal(env.Data, &clap))

	post := a.createPost(t, alice, "Reactions", models.PostPublished)
	path := "/posts/" + strconv.Itoa(int(post.ID))

	rec, env = a.do(t, http.MethodPost, path+"/reactions", bob, echo.Map{"reactionTypeId": 999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Reaction type does not exist"}, env.Errors)

	rec, _ = a.do(t, http.MethodPost, path+"/reactions", bob, echo.Map{"reactionTypeId": clap.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = a.do(t, http.MethodPost, path+"/reactions", bob, echo.Map{"reactionTypeId": clap.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/reported-posts", bob, echo.Map{"postId": post.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = a.do(t, http.MethodPost, "/reported-posts", bob, echo.Map{"postId": post.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = a.do(t, http.MethodGet, "/admin/reported-posts", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, env.Meta.TotalItems)
}

func multipartImage(t *testing.T, filename, contentType string, size int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xff}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/images/upload", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestImageUpload(t *testing.T) {
	a := newApp(t)
	_, alice := a.signup(t, "alice")

	rec, _ := a.send(t, multipartImage(t, "cat.png", "image/png", 10), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := a.send(t, multipartImage(t, "notes.txt", "text/plain", 10), alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only image files are allowed", env.Message)

	rec, env = a.send(t, multipartImage(t, "cat.png", "image/png", 10), alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(gjsonField(t, env.Data, "url"), `"https://cdn.example.com/post-images/`))
	assert.True(t, strings.HasSuffix(gjsonField(t, env.Data, "url"), `-cat.png"`))
	assert.Equal(t, []string{"post-images"}, a.uploader.buckets)

	a.uploader.err = errors.New("bucket unavailable")
	rec, env = a.send(t, multipartImage(t, "cat.png", "image/png", 10), alice)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to upload image", env.Message)
}

func TestWritingAssistant(t *testing.T) {
	a := newApp(t)
	_, alice := a.signup(t, "alice")

	rec, env := a.do(t, http.MethodPost, "/writing-assistant", alice, echo.Map{"title": "Go"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"userPrompt must not be empty"}, env.Errors)

	rec, env = a.do(t, http.MethodPost, "/writing-assistant", alice, echo.Map{"userPrompt": "expand"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = a.do(t, http.MethodPost, "/writing-assistant", alice, echo.Map{"title": "Go", "userPrompt": "expand"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"generatedText":"# Go","format":"markdown"}`, string(env.Data))
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	a := newApp(t)

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	a.health = errors.New("dial tcp 10.0.0.5:5432: connection refused")
	rec = httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","service":"inkwell-api","checks":{"postgres":"unavailable"}}`, rec.Body.String())
	entry := a.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "health check failed", entry.Message)
	assert.Equal(t, "postgres", entry.Data["component"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "dial tcp 10.0.0.5:5432: connection refused")

	rec, env := a.do(t, http.MethodGet, "/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func postTitles(t *testing.T, env envelope) []string {
	t.Helper()
	var posts []models.Post
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	return titles
}

func TestPostPagination(t *testing.T) {
	a := newApp(t)
	_, alice := a.signup(t, "alice")
	for i := 1; i <= 25; i++ {
		a.createPost(t, alice, fmt.Sprintf("Post %02d", i), models.PostPublished)
	}

	rec, first := a.do(t, http.MethodGet, "/posts?page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, second := a.do(t, http.MethodGet, "/posts?page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, last := a.do(t, http.MethodGet, "/posts?page=3&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var want []string
	for i := 25; i >= 1; i-- {
		want = append(want, fmt.Sprintf("Post %02d", i))
	}
	assert.Equal(t, want[:10], postTitles(t, first))
	assert.Equal(t, want[10:20], postTitles(t, second), "page 2 holds items 11-20, disjoint from page 1")
	assert.Equal(t, want[20:], postTitles(t, last))

	for _, env := range []envelope{first, second, last} {
		require.NotNil(t, env.Meta)
		assert.EqualValues(t, 25, env.Meta.TotalItems)
		assert.Equal(t, 3, env.Meta.TotalPages)
	}
	assert.True(t, second.Meta.HasNextPage)
	assert.True(t, second.Meta.HasPreviousPage)
	assert.False(t, last.Meta.HasNextPage)
}

func TestUserListingHidesDeactivatedUsers(t *testing.T) {
	a := newApp(t)
	a.signup(t, "alice")
	bobID, _ := a.signup(t, "bob")
	a.signup(t, "carol")
	root := a.admin(t)

	rec, _ := a.do(t, http.MethodPut, "/admin/users/"+strconv.Itoa(int(bobID))+"/deactivate", root, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := a.do(t, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "carol", "root"}, names)
	assert.EqualValues(t, 3, env.Meta.TotalItems)

	rec, env = a.do(t, http.MethodGet, "/users?search=bob", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, env = a.do(t, http.MethodGet, "/admin/users", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, env.Meta.TotalItems)
}

func TestDuplicateTopicIDsAreRejected(t *testing.T) {
	a := newApp(t)
	_, alice := a.signup(t, "alice")
	root := a.admin(t)

	rec, env := a.do(t, http.MethodPost, "/topics", root, echo.Map{"name": "Go"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var topic models.Topic
	require.NoError(t, json.Unmarshal(env.Data, &topic))

	rec, env = a.do(t, http.MethodPost, "/posts", alice, echo.Map{
		"title":    "Topics",
		"content":  json.RawMessage(`{"blocks":[]}`),
		"topicIds": []uint{topic.ID, topic.ID},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"topicIds must not contain duplicates"}, env.Errors)

	rec, env = a.do(t, http.MethodPost, "/posts", alice, echo.Map{
		"title":    "Topics",
		"content":  json.RawMessage(`{"blocks":[]}`),
		"topicIds": []uint{topic.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestDraftsCannotBeSavedOrReportedByOthers(t *testing.T) {
	a := newApp(t)
	_, alice := a.signup(t, "alice")
	_, bob := a.signup(t, "bob")

	draft := a.createPost(t, alice, "Secret draft", models.PostDraft)
	public := a.createPost(t, alice, "Public post", models.PostPublished)

	rec, env := a.do(t, http.MethodPost, "/me/reading-lists", bob, echo.Map{"name": "Later"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var list models.ReadingList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	savePath := "/me/reading-lists/" + strconv.Itoa(int(list.ID)) + "/saved-posts"

	rec, draftEnv := a.do(t, http.MethodPost, savePath, bob, echo.Map{"postId": draft.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, missingEnv := a.do(t, http.MethodPost, savePath, bob, echo.Map{"postId": 9999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, missingEnv.Message, draftEnv.Message, "a draft looks exactly like a missing post")

	rec, _ = a.do(t, http.MethodPost, savePath, bob, echo.Map{"postId": public.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/reported-posts", bob, echo.Map{"postId": draft.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = a.do(t, http.MethodPost, "/reported-posts", bob, echo.Map{"postId": public.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env = a.do(t, http.MethodPost, "/me/reading-lists", alice, echo.Map{"name": "Mine"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	rec, _ = a.do(t, http.MethodPost, "/me/reading-lists/"+strconv.Itoa(int(list.ID))+"/saved-posts", alice, echo.Map{"postId": draft.ID})
	assert.Equal(t, http.StatusCreated, rec.Code, "authors may save their own drafts")
}
