package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/authz"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories/repotest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostPublishedByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	post, err := f.posts.CreatePost(ctx, alice, postRequest("Hello World", ""))
	require.NoError(t, err)

	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, models.PostPublished, post.Status)
	assert.NotNil(t, post.PublishedAt)
	assert.JSONEq(t, `{"blocks":[{"type":"paragraph","text":"hello"}]}`, string(post.Content))

	jobs := f.queue.ofType(models.NotificationNewPost)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].FanOut)
	assert.Equal(t, alice.UserID, jobs[0].ActorID)
	assert.Equal(t, post.ID, jobs[0].TargetID)
}

func TestCreatePostSlugCollisionAddsSuffix(t *testing.T) {
	f := newFixture(t)
	f.posts.now = func() time.Time { return time.UnixMilli(1700000000000) }
	f.store.Posts().TakeSlug("hello-world")

	post, err := f.posts.CreatePost(context.Background(), f.user(t, "alice"), postRequest("Hello World", ""))
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1700000000000", post.Slug)
}

// racingPosts hides existing slugs from the pre-read so only the insert sees them.
type racingPosts struct {
	*repotest.Posts
}

func (racingPosts) SlugExists(context.Context, string) (bool, error) { return false, nil }

func TestCreatePostRetriesWhenInsertLosesSlugRace(t *testing.T) {
	f := newFixture(t)
	f.posts.posts = racingPosts{f.store.Posts()}
	f.posts.now = func() time.Time { return time.UnixMilli(1700000000000) }
	f.store.Posts().TakeSlug("hello-world")

	post, err := f.posts.CreatePost(context.Background(), f.user(t, "alice"), postRequest("Hello World", ""))
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1700000000001", post.Slug)
}

func TestCreatePostDuplicateTitleConflicts(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.publish(t, alice, "Same")

	_, err := f.posts.CreatePost(context.Background(), alice, postRequest("Same", ""))
	assert.True(t, errs.Is(err, errs.KindConflict))

	// another author may reuse the title
	_, err = f.posts.CreatePost(context.Background(), f.user(t, "bob"), postRequest("Same", ""))
	assert.NoError(t, err)
}

func TestCreatePostContentFailureRemovesRow(t *testing.T) {
	f := newFixture(t)
	f.store.ContentErr = errors.New("mongo down")
	alice := f.user(t, "alice")

	_, err := f.posts.CreatePost(context.Background(), alice, postRequest("Lost", ""))
	require.Error(t, err)

	exists, err := f.store.Posts().SlugExists(context.Background(), "lost")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.queue.ofType(models.NotificationNewPost))
}

func TestEnqueueFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("redis down")

	_, err := f.posts.CreatePost(context.Background(), f.user(t, "alice"), postRequest("Still here", ""))
	assert.NoError(t, err)
}

func TestPublishDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	draft, err := f.posts.CreatePost(ctx, alice, postRequest("Draft", models.PostDraft))
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)
	assert.Empty(t, f.queue.ofType(models.NotificationNewPost))

	_, err = f.posts.Publish(ctx, bob, draft.ID)
	assert.True(t, errs.Is(err, errs.KindForbidden))

	published, err := f.posts.Publish(ctx, alice, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)
	assert.Len(t, f.queue.ofType(models.NotificationNewPost), 1)

	_, err = f.posts.Publish(ctx, alice, draft.ID)
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	admin := f.admin(t, "root")

	var topics []uint
	for _, name := range []string{"go", "db", "web"} {
		topic := &models.Topic{Name: name}
		require.NoError(t, f.store.Topics().CreateTopic(ctx, topic))
		topics = append(topics, topic.ID)
	}
	req := postRequest("First title", "")
	req.TopicIDs = topics[:2]
	post, err := f.posts.CreatePost(ctx, alice, req)
	require.NoError(t, err)

	title := "Second title"
	_, err = f.posts.UpdatePost(ctx, bob, post.ID, models.UpdatePostRequest{Title: &title})
	assert.True(t, errs.Is(err, errs.KindForbidden))

	next := []uint{topics[1], topics[2]}
	updated, err := f.posts.UpdatePost(ctx, alice, post.ID, models.UpdatePostRequest{
		Title:    &title,
		Content:  json.RawMessage(`{"blocks":[]}`),
		TopicIDs: &next,
	})
	require.NoError(t, err)
	assert.Equal(t, "second-title", updated.Slug)
	assert.Equal(t, models.PostPublished, updated.Status)
	assert.ElementsMatch(t, next, updated.TopicIDs())
	assert.JSONEq(t, `{"blocks":[]}`, string(updated.Content))

	// admins may edit; a nil topic list keeps the topics
	cover := "https://cdn.example.com/c.png"
	updated, err = f.posts.UpdatePost(ctx, admin, post.ID, models.UpdatePostRequest{CoverImageURL: &cover})
	require.NoError(t, err)
	assert.Equal(t, cover, *updated.CoverImageURL)
	assert.Equal(t, "second-title", updated.Slug)
	assert.ElementsMatch(t, next, updated.TopicIDs())
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.publish(t, alice, "Gone soon")

	assert.True(t, errs.Is(f.posts.DeletePost(ctx, f.user(t, "bob"), post.ID), errs.KindForbidden))
	require.NoError(t, f.posts.DeletePost(ctx, alice, post.ID))
	assert.True(t, errs.Is(f.posts.DeletePost(ctx, alice, post.ID), errs.KindNotFound))

	content, err := f.store.Contents().GetContent(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, content)
}

func TestGetBySlugVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	admin := f.admin(t, "root")

	_, err := f.posts.CreatePost(ctx, alice, postRequest("Secret draft", models.PostDraft))
	require.NoError(t, err)

	_, err = f.posts.GetBySlug(ctx, auth.Anonymous(), "secret-draft")
	assert.True(t, errs.Is(err, errs.KindNotFound))
	_, err = f.posts.GetBySlug(ctx, auth.Authenticated(bob), "secret-draft")
	assert.True(t, errs.Is(err, errs.KindNotFound))

	got, err := f.posts.GetBySlug(ctx, auth.Authenticated(alice), "secret-draft")
	require.NoError(t, err)
	assert.NotEmpty(t, got.Content)
	_, err = f.posts.GetBySlug(ctx, auth.Authenticated(admin), "secret-draft")
	assert.NoError(t, err)

	f.publish(t, alice, "Public")
	_, err = f.posts.GetBySlug(ctx, auth.Anonymous(), "public")
	assert.NoError(t, err)

	require.NoError(t, f.store.Users().SetActive(ctx, alice.UserID, false))
	_, err = f.posts.GetBySlug(ctx, auth.Anonymous(), "public")
	assert.True(t, errs.Is(err, errs.KindNotFound), "posts of banned authors are hidden")
}

func TestReactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.publish(t, alice, "Reactable")
	like := &models.ReactionType{Name: "like", ImageURL: "https://cdn.example.com/like.png"}
	require.NoError(t, f.store.Reactions().CreateType(ctx, like))

	reaction, err := f.posts.React(ctx, bob, post.ID, models.ReactRequest{ReactionTypeID: like.ID})
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, reaction.UserID)

	_, err = f.posts.React(ctx, bob, post.ID, models.ReactRequest{ReactionTypeID: like.ID})
	assert.True(t, errs.Is(err, errs.KindConflict))

	jobs := f.queue.ofType(models.NotificationPostReaction)
	require.Len(t, jobs, 1)
	assert.Equal(t, alice.UserID, jobs[0].RecipientID)
	assert.Equal(t, bob.UserID, jobs[0].ActorID)

	require.NoError(t, f.posts.Unreact(ctx, bob, post.ID))
	assert.True(t, errs.Is(f.posts.Unreact(ctx, bob, post.ID), errs.KindNotFound))

	_, err = f.posts.React(ctx, bob, post.ID, models.ReactRequest{ReactionTypeID: 999})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	draft, err := f.posts.CreatePost(ctx, alice, postRequest("Hidden", models.PostDraft))
	require.NoError(t, err)
	_, err = f.posts.React(ctx, bob, draft.ID, models.ReactRequest{ReactionTypeID: like.ID})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestRecordView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.publish(t, alice, "Viewed")

	_, err := f.posts.RecordView(ctx, alice, post.ID)
	assert.True(t, errors.Is(err, authz.ErrAuthorView))

	created, err := f.posts.RecordView(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.posts.RecordView(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.False(t, created)

	detail, err := f.posts.GetBySlug(ctx, auth.Anonymous(), post.Slug)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.ViewCount)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	post := f.publish(t, alice, "Discuss")

	first, err := f.posts.AddComment(ctx, bob, post.ID, models.CommentRequest{Content: "nice"})
	require.NoError(t, err)
	_, err = f.posts.AddComment(ctx, bob, post.ID, models.CommentRequest{Content: "again"})
	require.NoError(t, err)

	jobs := f.queue.ofType(models.NotificationNewComment)
	require.Len(t, jobs, 2)
	assert.NotEqual(t, jobs[0].EventID, jobs[1].EventID)

	_, err = f.posts.UpdateComment(ctx, carol, post.ID, first.ID, models.CommentRequest{Content: "hijack"})
	assert.True(t, errs.Is(err, errs.KindForbidden))

	edited, err := f.posts.UpdateComment(ctx, bob, post.ID, first.ID, models.CommentRequest{Content: "very nice"})
	require.NoError(t, err)
	assert.Equal(t, "very nice", edited.Content)

	// the post author moderates comments on their post
	require.NoError(t, f.posts.DeleteComment(ctx, alice, post.ID, first.ID))

	comments, total, err := f.posts.ListComments(ctx, auth.Anonymous(), post.ID, models.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "again", comments[0].Content)

	other := f.publish(t, alice, "Other")
	_, err = f.posts.UpdateComment(ctx, bob, other.ID, comments[0].ID, models.CommentRequest{Content: "x"})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestPublicationSubmissionAndApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	writer := f.user(t, "writer")
	outsider := f.user(t, "outsider")

	pub, err := f.publications.Create(ctx, owner, models.PublicationRequest{Name: "Weekly"})
	require.NoError(t, err)

	_, err = f.posts.SubmitToPublication(ctx, outsider, pub.ID, postRequest("Pitch", ""))
	assert.True(t, errs.Is(err, errs.KindForbidden))

	inv, err := f.publications.Invite(ctx, owner, models.InvitationRequest{PublicationID: pub.ID, InviteeID: writer.UserID})
	require.NoError(t, err)
	_, err = f.publications.Accept(ctx, writer, inv.ID)
	require.NoError(t, err)

	post, err := f.posts.SubmitToPublication(ctx, writer, pub.ID, postRequest("Pitch", models.PostPublished))
	require.NoError(t, err)
	assert.Equal(t, models.PostPending, post.Status)
	assert.Empty(t, f.queue.ofType(models.NotificationNewPost))

	posts, _, err := f.posts.ListPublicationPosts(ctx, auth.Anonymous(), pub.ID, models.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)
	posts, _, err = f.posts.ListPublicationPosts(ctx, auth.Authenticated(owner), pub.ID, models.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = f.posts.GetBySlug(ctx, auth.Authenticated(owner), post.Slug)
	assert.NoError(t, err, "owners can read pending submissions")

	_, err = f.posts.Approve(ctx, writer, pub.ID, post.Slug)
	assert.True(t, errs.Is(err, errs.KindForbidden))

	approved, err := f.posts.Approve(ctx, owner, pub.ID, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, models.PostPublished, approved.Status)
	jobs := f.queue.ofType(models.NotificationNewPost)
	require.Len(t, jobs, 1)
	assert.Equal(t, writer.UserID, jobs[0].ActorID)

	_, err = f.posts.Approve(ctx, owner, pub.ID, post.Slug)
	assert.True(t, errs.Is(err, errs.KindConflict))

	_, err = f.posts.Publish(ctx, writer, post.ID)
	assert.True(t, errs.Is(err, errs.KindConflict))

	assert.True(t, errs.Is(f.posts.RemovePublicationPost(ctx, outsider, pub.ID, post.ID), errs.KindForbidden))
	require.NoError(t, f.posts.RemovePublicationPost(ctx, owner, pub.ID, post.ID))
}

func TestFeedListsFollowedAuthors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	f.publish(t, bob, "From bob")
	f.publish(t, carol, "From carol")

	_, err := f.social.Follow(ctx, alice, bob.UserID)
	require.NoError(t, err)

	posts, total, err := f.posts.Feed(ctx, alice, models.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "From bob", posts[0].Title)
}
