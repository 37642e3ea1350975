package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/authz"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifier"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const maxSlugAttempts = 5

// PostDetail is a post with its body and engagement counters.
type PostDetail struct {
	*models.Post
	ReactionCount int64 `json:"reactionCount"`
	ViewCount     int64 `json:"viewCount"`
}

type PostService struct {
	posts        repositories.PostRepository
	contents     repositories.ContentRepository
	reactions    repositories.ReactionRepository
	comments     repositories.CommentRepository
	publications repositories.PublicationRepository
	notifier     Enqueuer
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewPostService(
	posts repositories.PostRepository,
	contents repositories.ContentRepository,
	reactions repositories.ReactionRepository,
	comments repositories.CommentRepository,
	publications repositories.PublicationRepository,
	notifier Enqueuer,
	log logrus.FieldLogger,
) *PostService {
	return &PostService{
		posts:        posts,
		contents:     contents,
		reactions:    reactions,
		comments:     comments,
		publications: publications,
		notifier:     notifier,
		log:          log.WithField("service", "posts"),
		now:          time.Now,
	}
}

// CreatePost creates a personal post, PUBLISHED unless DRAFT was requested.
func (s *PostService) CreatePost(ctx context.Context, p auth.Principal, req models.CreatePostRequest) (*PostDetail, error) {
	status := req.Status
	if status == "" {
		status = models.PostPublished
	}
	post := &models.Post{
		Title:         req.Title,
		CoverImageURL: req.CoverImageURL,
		Status:        status,
		AuthorID:      p.UserID,
	}
	if status == models.PostPublished {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := s.create(ctx, post, req); err != nil {
		return nil, err
	}
	if status == models.PostPublished {
		s.announce(ctx, post, p.Username)
	}
	return s.detail(ctx, post.ID)
}

// SubmitToPublication creates a PENDING post inside a publication the caller belongs to.
func (s *PostService) SubmitToPublication(ctx context.Context, p auth.Principal, publicationID uint, req models.CreatePostRequest) (*PostDetail, error) {
	if _, err := s.publications.GetPublicationByID(ctx, publicationID); err != nil {
		return nil, err
	}
	_, err := s.publications.GetMember(ctx, publicationID, p.UserID)
	member, err := found(err)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourcePublication, authz.ActionSubmit, authz.Subject{Member: member}); err != nil {
		return nil, errs.Forbidden("Only members can submit posts to this publication")
	}

	post := &models.Post{
		Title:         req.Title,
		CoverImageURL: req.CoverImageURL,
		Status:        models.PostPending,
		AuthorID:      p.UserID,
		PublicationID: &publicationID,
	}
	if err := s.create(ctx, post, req); err != nil {
		return nil, err
	}
	return s.detail(ctx, post.ID)
}

// create inserts the row, retrying when another writer takes the slug first,
// then stores the body. A failed body write removes the row again.
func (s *PostService) create(ctx context.Context, post *models.Post, req models.CreatePostRequest) error {
	for attempt := 0; ; attempt++ {
		sl, err := s.slugFor(ctx, post.Title, "", attempt)
		if err != nil {
			return err
		}
		post.Slug = sl
		err = s.posts.CreatePost(ctx, post, req.TopicIDs)
		if errors.Is(err, repositories.ErrSlugTaken) {
			if attempt+1 < maxSlugAttempts {
				continue
			}
			return errs.Conflict("Could not allocate a unique slug, please retry")
		}
		if err != nil {
			return err
		}
		break
	}

	if err := s.contents.SaveContent(ctx, post.ID, req.Content); err != nil {
		if delErr := s.posts.DeletePost(ctx, post.ID); delErr != nil {
			s.log.WithError(delErr).WithField("post", post.ID).Error("rollback post after content failure")
		}
		return errors.Wrap(err, "save post content")
	}
	return nil
}

// slugFor derives the slug for title. The plain slug is used when free;
// otherwise, and on every retry, a millisecond suffix is appended.
func (s *PostService) slugFor(ctx context.Context, title, current string, attempt int) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "post"
	}
	if base == current {
		return base, nil
	}
	if attempt == 0 {
		taken, err := s.posts.SlugExists(ctx, base)
		if err != nil {
			return "", err
		}
		if !taken {
			return base, nil
		}
	}
	return fmt.Sprintf("%s-%d", base, s.now().UnixMilli()+int64(attempt)), nil
}

// announce fans a NEW_POST notification out to the author's followers.
func (s *PostService) announce(ctx context.Context, post *models.Post, authorName string) {
	enqueue(ctx, s.notifier, s.log, notifier.Job{
		Type:       models.NotificationNewPost,
		ActorID:    post.AuthorID,
		ActorName:  authorName,
		FanOut:     true,
		TargetType: models.TargetPost,
		TargetID:   post.ID,
		Subject:    post.Title,
	})
}

func authorName(post *models.Post) string {
	if post.Author != nil {
		return post.Author.Username
	}
	return ""
}

// Publish moves the caller's DRAFT post to PUBLISHED.
func (s *PostService) Publish(ctx context.Context, p auth.Principal, postID uint) (*PostDetail, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourcePost, authz.ActionPublish, authz.Owners(post.AuthorID)); err != nil {
		return nil, err
	}
	ok, err := s.posts.TransitionStatus(ctx, post.ID, models.PostDraft, models.PostPublished)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Conflict("Only draft posts can be published")
	}
	s.announce(ctx, post, authorName(post))
	return s.detail(ctx, post.ID)
}

// Approve publishes a PENDING publication post; only publication owners may.
func (s *PostService) Approve(ctx context.Context, p auth.Principal, publicationID uint, postSlug string) (*PostDetail, error) {
	if _, err := s.publications.GetPublicationByID(ctx, publicationID); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if post.PublicationID == nil || *post.PublicationID != publicationID {
		return nil, errs.NotFound("Post not found")
	}
	owners, err := s.publications.OwnerIDs(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourcePublication, authz.ActionApprove, authz.Owners(owners...)); err != nil {
		return nil, err
	}
	ok, err := s.posts.TransitionStatus(ctx, post.ID, models.PostPending, models.PostPublished)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Conflict("Only pending posts can be approved")
	}
	s.announce(ctx, post, authorName(post))
	return s.detail(ctx, post.ID)
}

// UpdatePost edits fields in place; the status never changes here.
func (s *PostService) UpdatePost(ctx context.Context, p auth.Principal, postID uint, req models.UpdatePostRequest) (*PostDetail, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourcePost, authz.ActionUpdate, authz.Owners(post.AuthorID)); err != nil {
		return nil, err
	}

	update := &models.Post{
		ID:            post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		CoverImageURL: post.CoverImageURL,
		AuthorID:      post.AuthorID,
	}
	titleChanged := req.Title != nil && *req.Title != post.Title
	if titleChanged {
		update.Title = *req.Title
	}
	if req.CoverImageURL != nil {
		update.CoverImageURL = req.CoverImageURL
		if *req.CoverImageURL == "" {
			update.CoverImageURL = nil
		}
	}

	for attempt := 0; ; attempt++ {
		if titleChanged {
			if update.Slug, err = s.slugFor(ctx, update.Title, post.Slug, attempt); err != nil {
				return nil, err
			}
		}
		err = s.posts.UpdatePost(ctx, update, req.TopicIDs)
		if errors.Is(err, repositories.ErrSlugTaken) && attempt+1 < maxSlugAttempts {
			continue
		}
		if errors.Is(err, repositories.ErrSlugTaken) {
			return nil, errs.Conflict("Could not allocate a unique slug, please retry")
		}
		if err != nil {
			return nil, err
		}
		break
	}

	if hasBody(req.Content) {
		if err := s.contents.SaveContent(ctx, post.ID, req.Content); err != nil {
			return nil, errors.Wrap(err, "save post content")
		}
	}
	return s.detail(ctx, post.ID)
}

func hasBody(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func (s *PostService) DeletePost(ctx context.Context, p auth.Principal, postID uint) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := authz.Check(p, authz.ResourcePost, authz.ActionDelete, authz.Owners(post.AuthorID)); err != nil {
		return err
	}
	return s.remove(ctx, post.ID)
}

// RemovePublicationPost lets the author or a publication owner delete a post
// that belongs to the publication.
func (s *PostService) RemovePublicationPost(ctx context.Context, p auth.Principal, publicationID, postID uint) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.PublicationID == nil || *post.PublicationID != publicationID {
		return errs.NotFound("Post not found")
	}
	owners, err := s.publications.OwnerIDs(ctx, publicationID)
	if err != nil {
		return err
	}
	if err := authz.Check(p, authz.ResourcePost, authz.ActionDelete, authz.Owners(append(owners, post.AuthorID)...)); err != nil {
		return err
	}
	return s.remove(ctx, post.ID)
}

func (s *PostService) remove(ctx context.Context, postID uint) error {
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return err
	}
	if err := s.contents.DeleteContent(ctx, postID); err != nil {
		s.log.WithError(err).WithField("post", postID).Warn("delete post content")
	}
	return nil
}

// canSee reports whether caller may read post. Published posts of active
// authors are public; anything else is limited to the author, publication
// owners and admins.
func (s *PostService) canSee(ctx context.Context, caller auth.Caller, post *models.Post) (bool, error) {
	if post.Status == models.PostPublished && post.Author != nil && post.Author.IsActive {
		return true, nil
	}
	p, ok := caller.Principal()
	if !ok {
		return false, nil
	}
	owners := []uint{post.AuthorID}
	if post.PublicationID != nil {
		ids, err := s.publications.OwnerIDs(ctx, *post.PublicationID)
		if err != nil {
			return false, err
		}
		owners = append(owners, ids...)
	}
	return authz.Check(p, authz.ResourcePost, authz.ActionRead, authz.Owners(owners...)) == nil, nil
}

func (s *PostService) visible(ctx context.Context, caller auth.Caller, post *models.Post, err error) (*models.Post, error) {
	if err != nil {
		return nil, err
	}
	ok, err := s.canSee(ctx, caller, post)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("Post not found")
	}
	return post, nil
}

// published loads a post that can be engaged with: it must be PUBLISHED and
// visible to the caller.
func (s *PostService) published(ctx context.Context, p auth.Principal, postID uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	post, err = s.visible(ctx, auth.Authenticated(p), post, err)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostPublished {
		return nil, errs.NotFound("Post not found")
	}
	return post, nil
}

// GetBySlug returns the post with its body, subject to visibility.
func (s *PostService) GetBySlug(ctx context.Context, caller auth.Caller, postSlug string) (*PostDetail, error) {
	post, err := s.posts.GetPostBySlug(ctx, postSlug)
	if post, err = s.visible(ctx, caller, post, err); err != nil {
		return nil, err
	}
	return s.withBody(ctx, post)
}

// Readable loads a post the caller may reference: published by an active
// author, or owned by the caller. Anything else is NotFound.
func (s *PostService) Readable(ctx context.Context, caller auth.Caller, postID uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	return s.visible(ctx, caller, post, err)
}

func (s *PostService) detail(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.withBody(ctx, post)
}

func (s *PostService) withBody(ctx context.Context, post *models.Post) (*PostDetail, error) {
	content, err := s.contents.GetContent(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Content = content
	reactions, err := s.reactions.CountReactions(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	views, err := s.reactions.CountViews(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, ReactionCount: reactions, ViewCount: views}, nil
}

// ListPublished lists published posts of active authors, optionally by one author.
func (s *PostService) ListPublished(ctx context.Context, authorID uint, q models.PageQuery) ([]models.Post, int64, error) {
	return s.posts.ListPosts(ctx, repositories.PostFilter{PublicOnly: true, AuthorID: authorID}, q)
}

// ListMine lists the caller's own posts in any status.
func (s *PostService) ListMine(ctx context.Context, p auth.Principal, q models.PostListQuery) ([]models.Post, int64, error) {
	return s.posts.ListPosts(ctx, repositories.PostFilter{AuthorID: p.UserID, Status: q.Status}, q.PageQuery)
}

// Feed lists published posts from the authors the caller follows.
func (s *PostService) Feed(ctx context.Context, p auth.Principal, q models.PageQuery) ([]models.Post, int64, error) {
	return s.posts.ListPosts(ctx, repositories.PostFilter{PublicOnly: true, FollowerID: p.UserID}, q)
}

// ListPublicationPosts shows pending posts to publication owners and admins
// only; everyone else sees the published ones.
func (s *PostService) ListPublicationPosts(ctx context.Context, caller auth.Caller, publicationID uint, q models.PageQuery) ([]models.Post, int64, error) {
	if _, err := s.publications.GetPublicationByID(ctx, publicationID); err != nil {
		return nil, 0, err
	}
	filter := repositories.PostFilter{PublicationID: publicationID, PublicOnly: true}
	if p, ok := caller.Principal(); ok {
		owners, err := s.publications.OwnerIDs(ctx, publicationID)
		if err != nil {
			return nil, 0, err
		}
		if authz.Allowed(authz.PolicyOwnerOrAdmin, p, authz.Owners(owners...)) {
			filter.PublicOnly = false
		}
	}
	return s.posts.ListPosts(ctx, filter, q)
}

// React records the caller's reaction. A second reaction on the same post is a Conflict.
func (s *PostService) React(ctx context.Context, p auth.Principal, postID uint, req models.ReactRequest) (*models.PostReaction, error) {
	post, err := s.published(ctx, p, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.reactions.GetType(ctx, req.ReactionTypeID); err != nil {
		return nil, err
	}
	reaction := &models.PostReaction{PostID: post.ID, UserID: p.UserID, ReactionTypeID: req.ReactionTypeID}
	if err := s.reactions.CreateReaction(ctx, reaction); err != nil {
		return nil, err
	}
	enqueue(ctx, s.notifier, s.log, notifier.Job{
		Type:        models.NotificationPostReaction,
		ActorID:     p.UserID,
		ActorName:   p.Username,
		RecipientID: post.AuthorID,
		TargetType:  models.TargetPost,
		TargetID:    post.ID,
		Subject:     post.Title,
		EventID:     reaction.ID,
	})
	return reaction, nil
}

func (s *PostService) Unreact(ctx context.Context, p auth.Principal, postID uint) error {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return err
	}
	return s.reactions.DeleteReaction(ctx, postID, p.UserID)
}

// RecordView stores a view once per user. It returns authz.ErrAuthorView
// when the author views their own post, and created=false for a repeat view.
func (s *PostService) RecordView(ctx context.Context, p auth.Principal, postID uint) (bool, error) {
	post, err := s.published(ctx, p, postID)
	if err != nil {
		return false, err
	}
	if err := authz.Check(p, authz.ResourcePost, authz.ActionView, authz.Owners(post.AuthorID)); err != nil {
		return false, err
	}
	return s.reactions.RecordView(ctx, &models.PostView{PostID: post.ID, UserID: p.UserID})
}

func (s *PostService) ListComments(ctx context.Context, caller auth.Caller, postID uint, q models.PageQuery) ([]models.Comment, int64, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if _, err = s.visible(ctx, caller, post, err); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByPost(ctx, postID, q)
}

func (s *PostService) AddComment(ctx context.Context, p auth.Principal, postID uint, req models.CommentRequest) (*models.Comment, error) {
	post, err := s.published(ctx, p, postID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: post.ID, AuthorID: p.UserID, Content: req.Content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	enqueue(ctx, s.notifier, s.log, notifier.Job{
		Type:        models.NotificationNewComment,
		ActorID:     p.UserID,
		ActorName:   p.Username,
		RecipientID: post.AuthorID,
		TargetType:  models.TargetPost,
		TargetID:    post.ID,
		Subject:     post.Title,
		EventID:     comment.ID,
	})
	return s.comments.GetCommentByID(ctx, comment.ID)
}

// comment loads a comment of postID and checks the caller may act on it.
// The comment author and the post author both count as owners.
func (s *PostService) comment(ctx context.Context, p auth.Principal, postID, commentID uint, action authz.Action) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, errs.NotFound("Comment not found")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourceComment, action, authz.Owners(comment.AuthorID, post.AuthorID)); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *PostService) UpdateComment(ctx context.Context, p auth.Principal, postID, commentID uint, req models.CommentRequest) (*models.Comment, error) {
	comment, err := s.comment(ctx, p, postID, commentID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	comment.Content = req.Content
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.GetCommentByID(ctx, comment.ID)
}

func (s *PostService) DeleteComment(ctx context.Context, p auth.Principal, postID, commentID uint) error {
	if _, err := s.comment(ctx, p, postID, commentID, authz.ActionDelete); err != nil {
		return err
	}
	return s.comments.DeleteComment(ctx, commentID)
}
