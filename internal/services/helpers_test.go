package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifier"
	"github.com/anonto42/inkwell/backend/internal/repositories/repotest"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []notifier.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job notifier.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) ofType(t models.NotificationType) []notifier.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []notifier.Job
	for _, j := range q.jobs {
		if j.Type == t {
			out = append(out, j)
		}
	}
	return out
}

type fixture struct {
	store        *repotest.Store
	queue        *recordingQueue
	posts        *PostService
	social       *SocialService
	users        *UserService
	publications *PublicationService
	tokens       *auth.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	queue := &recordingQueue{}
	log, _ := test.NewNullLogger()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return &fixture{
		store:  store,
		queue:  queue,
		tokens: tokens,
		posts: NewPostService(store.Posts(), store.Contents(), store.Reactions(), store.Comments(),
			store.Publications(), queue, log),
		social:       NewSocialService(store.Users(), store.Follows(), queue, log),
		users:        NewUserService(store.Users(), store.Follows(), store.Reactions(), tokens, nil, log),
		publications: NewPublicationService(store.Publications(), store.Users(), queue, log),
	}
}

func (f *fixture) user(t *testing.T, username string) auth.Principal {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
		IsActive: true,
		Profile:  &models.Profile{Name: username},
	}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), u))
	return auth.PrincipalOf(u)
}

func (f *fixture) admin(t *testing.T, username string) auth.Principal {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), u))
	return auth.PrincipalOf(u)
}

func postRequest(title string, status models.PostStatus) models.CreatePostRequest {
	return models.CreatePostRequest{
		Title:   title,
		Content: json.RawMessage(`{"blocks":[{"type":"paragraph","text":"hello"}]}`),
		Status:  status,
	}
}

func (f *fixture) publish(t *testing.T, p auth.Principal, title string) *PostDetail {
	t.Helper()
	post, err := f.posts.CreatePost(context.Background(), p, postRequest(title, ""))
	require.NoError(t, err)
	return post
}
