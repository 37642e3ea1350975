package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
)

type Comments struct{ *Store }

func (r *Comments) CreateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[comment.PostID]; !ok {
		return errs.NotFound("Post not found")
	}
	comment.ID = r.nextID()
	comment.CreatedAt = r.now()
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	cp.Author, cp.Post = nil, nil
	r.comments[comment.ID] = &cp
	return nil
}

func (r *Comments) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, errs.NotFound("Comment not found")
	}
	cp := *c
	cp.Author = r.userCopy(c.AuthorID)
	return &cp, nil
}

func (r *Comments) ListByPost(_ context.Context, postID uint, q models.PageQuery) ([]models.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.PostID == postID && r.userActive(c.AuthorID) {
			cp := *c
			cp.Author = r.userCopy(c.AuthorID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, q), int64(len(out)), nil
}

func (r *Comments) UpdateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[comment.ID]
	if !ok {
		return errs.NotFound("Comment not found")
	}
	c.Content = comment.Content
	c.UpdatedAt = r.now()
	return nil
}

func (r *Comments) DeleteComment(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return errs.NotFound("Comment not found")
	}
	delete(r.comments, id)
	return nil
}

type Reactions struct{ *Store }

func (r *Reactions) ListTypes(_ context.Context) ([]models.ReactionType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ReactionType{}
	for _, t := range r.reactionTypes {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Reactions) GetType(_ context.Context, id uint) (*models.ReactionType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.reactionTypes[id]
	if !ok {
		return nil, errs.NotFound("Reaction type not found")
	}
	cp := *t
	return &cp, nil
}

func (r *Reactions) CreateType(_ context.Context, rt *models.ReactionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.reactionTypes {
		if t.Name == rt.Name {
			return errs.Conflict("Reaction type already exists")
		}
	}
	rt.ID = r.nextID()
	cp := *rt
	r.reactionTypes[rt.ID] = &cp
	return nil
}

func (r *Reactions) UpdateType(_ context.Context, rt *models.ReactionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reactionTypes[rt.ID]; !ok {
		return errs.NotFound("Reaction type not found")
	}
	cp := *rt
	r.reactionTypes[rt.ID] = &cp
	return nil
}

func (r *Reactions) DeleteType(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reactionTypes[id]; !ok {
		return errs.NotFound("Reaction type not found")
	}
	delete(r.reactionTypes, id)
	return nil
}

func (r *Reactions) CreateReaction(_ context.Context, reaction *models.PostReaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.reactions {
		if x.PostID == reaction.PostID && x.UserID == reaction.UserID {
			return errs.Conflict("This user have reacted on this post.")
		}
	}
	reaction.ID = r.nextID()
	reaction.CreatedAt = r.now()
	r.reactions = append(r.reactions, *reaction)
	return nil
}

func (r *Reactions) DeleteReaction(_ context.Context, postID, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.reactions {
		if x.PostID == postID && x.UserID == userID {
			r.reactions = append(r.reactions[:i], r.reactions[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("This user has not reacted on this post.")
}

func (r *Reactions) CountReactions(_ context.Context, postID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.reactions {
		if x.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *Reactions) ReactionsForAuthor(_ context.Context, authorID uint) ([]models.PostReaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PostReaction{}
	for _, x := range r.reactions {
		if p, ok := r.posts[x.PostID]; ok && p.AuthorID == authorID {
			out = append(out, x)
		}
	}
	return out, nil
}

func (r *Reactions) RecordView(_ context.Context, view *models.PostView) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.views {
		if v.PostID == view.PostID && v.UserID == view.UserID {
			return false, nil
		}
	}
	view.ID = r.nextID()
	view.CreatedAt = r.now()
	r.views = append(r.views, *view)
	return true, nil
}

func (r *Reactions) CountViews(_ context.Context, postID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.views {
		if v.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *Reactions) ViewsForAuthor(_ context.Context, authorID uint) ([]models.PostView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PostView{}
	for _, v := range r.views {
		if p, ok := r.posts[v.PostID]; ok && p.AuthorID == authorID {
			out = append(out, v)
		}
	}
	return out, nil
}

type Follows struct{ *Store }

func (r *Follows) CreateFollow(_ context.Context, follow *models.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return errs.Conflict("Already following this user")
		}
	}
	follow.ID = r.nextID()
	follow.CreatedAt = r.now()
	r.follows = append(r.follows, *follow)
	return nil
}

func (r *Follows) DeleteFollow(_ context.Context, followerID, followingID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			r.follows = append(r.follows[:i], r.follows[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("Follow relationship not found")
}

func (r *Follows) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Follows) edgeUsers(q models.PageQuery, match func(models.Follow) (uint, bool)) ([]models.User, int64) {
	var edges []models.Follow
	for _, f := range r.follows {
		if id, ok := match(f); ok && r.userActive(id) {
			edges = append(edges, f)
		}
	}
	newestFirst(edges, func(f models.Follow) time.Time { return f.CreatedAt })
	users := []models.User{}
	for _, f := range page(edges, q) {
		id, _ := match(f)
		users = append(users, *r.userCopy(id))
	}
	return users, int64(len(edges))
}

func (r *Follows) ListFollowers(_ context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, total := r.edgeUsers(q, func(f models.Follow) (uint, bool) { return f.FollowerID, f.FollowingID == userID })
	return users, total, nil
}

func (r *Follows) ListFollowing(_ context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, total := r.edgeUsers(q, func(f models.Follow) (uint, bool) { return f.FollowingID, f.FollowerID == userID })
	return users, total, nil
}

func (r *Follows) FollowerIDs(_ context.Context, userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []uint{}
	for _, f := range r.follows {
		if f.FollowingID == userID && r.userActive(f.FollowerID) {
			ids = append(ids, f.FollowerID)
		}
	}
	return ids, nil
}

func (r *Follows) FollowerEdges(_ context.Context, userID uint) ([]models.Follow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Follow{}
	for _, f := range r.follows {
		if f.FollowingID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

type Notifications struct{ *Store }

func (r *Notifications) CreateIfAbsent(_ context.Context, n *models.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.NotificationErr != nil {
		if err := r.NotificationErr(n.RecipientID); err != nil {
			return false, err
		}
	}
	for _, x := range r.notifications {
		if x.DedupeKey == n.DedupeKey {
			return false, nil
		}
	}
	n.ID = r.nextID()
	n.CreatedAt = r.now()
	r.notifications = append(r.notifications, *n)
	return true, nil
}

func (r *Notifications) ListByRecipient(_ context.Context, recipientID uint, q models.PageQuery) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	newestFirst(out, func(n models.Notification) time.Time { return n.CreatedAt })
	return page(out, q), int64(len(out)), nil
}

func (r *Notifications) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.notifications {
		if x.RecipientID == recipientID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *Notifications) MarkAsRead(_ context.Context, notificationID, recipientID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == notificationID && r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return errs.NotFound("Notification not found")
}

func (r *Notifications) MarkAllAsRead(_ context.Context, recipientID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

// All returns every stored notification in insertion order.
func (r *Notifications) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.notifications...)
}
