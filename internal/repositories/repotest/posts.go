package repotest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
)

type Posts struct{ *Store }

// TakeSlug reserves a slug as if another writer inserted it first.
func (r *Posts) TakeSlug(slug string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID()
	r.posts[id] = &models.Post{ID: id, Slug: slug, Title: slug, Status: models.PostDraft}
}

func (r *Posts) checkUnique(post *models.Post) error {
	for id, p := range r.posts {
		if id == post.ID {
			continue
		}
		if p.Slug == post.Slug {
			return repositories.ErrSlugTaken
		}
		if p.AuthorID == post.AuthorID && p.Title == post.Title {
			return errs.Conflict("Post with this title already exists on this user")
		}
	}
	return nil
}

func (r *Posts) CreatePost(_ context.Context, post *models.Post, topicIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(post); err != nil {
		return err
	}
	post.ID = r.nextID()
	post.CreatedAt = r.now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	cp.Author, cp.Publication, cp.Topics, cp.Content = nil, nil, nil, nil
	r.posts[post.ID] = &cp
	r.postTopics[post.ID], _ = models.DiffTopicIDs(nil, topicIDs)
	return nil
}

func (r *Posts) hydrate(p *models.Post) *models.Post {
	cp := *p
	cp.Author = r.userCopy(p.AuthorID)
	if p.PublicationID != nil {
		if pub, ok := r.publications[*p.PublicationID]; ok {
			pc := *pub
			pc.Members = nil
			cp.Publication = &pc
		}
	}
	cp.Topics = []models.Topic{}
	for _, id := range r.postTopics[p.ID] {
		if t, ok := r.topics[id]; ok {
			cp.Topics = append(cp.Topics, *t)
		} else {
			cp.Topics = append(cp.Topics, models.Topic{ID: id})
		}
	}
	return &cp
}

func (r *Posts) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, errs.NotFound("Post not found")
	}
	return r.hydrate(p), nil
}

func (r *Posts) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return r.hydrate(p), nil
		}
	}
	return nil, errs.NotFound("Post not found")
}

func (r *Posts) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *Posts) UpdatePost(_ context.Context, post *models.Post, topicIDs *[]uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.posts[post.ID]
	if !ok {
		return errs.NotFound("Post not found")
	}
	if err := r.checkUnique(post); err != nil {
		return err
	}
	cur.Title = post.Title
	cur.Slug = post.Slug
	cur.CoverImageURL = post.CoverImageURL
	cur.UpdatedAt = r.now()
	if topicIDs != nil {
		add, remove := models.DiffTopicIDs(r.postTopics[post.ID], *topicIDs)
		kept := r.postTopics[post.ID][:0:0]
		for _, id := range r.postTopics[post.ID] {
			if !containsID(remove, id) {
				kept = append(kept, id)
			}
		}
		r.postTopics[post.ID] = append(kept, add...)
	}
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (r *Posts) TransitionStatus(_ context.Context, id uint, from, to models.PostStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if to == models.PostPublished {
		now := r.now()
		p.PublishedAt = &now
	}
	return true, nil
}

func (r *Posts) DeletePost(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return errs.NotFound("Post not found")
	}
	delete(r.posts, id)
	delete(r.postTopics, id)
	return nil
}

func (r *Posts) following(followerID, authorID uint) bool {
	for _, f := range r.follows {
		if f.FollowerID == followerID && f.FollowingID == authorID {
			return true
		}
	}
	return false
}

func (r *Posts) ListPosts(_ context.Context, f repositories.PostFilter, q models.PageQuery) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.posts {
		if f.PublicOnly && (p.Status != models.PostPublished || !r.userActive(p.AuthorID)) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.AuthorID != 0 && p.AuthorID != f.AuthorID {
			continue
		}
		if f.PublicationID != 0 && (p.PublicationID == nil || *p.PublicationID != f.PublicationID) {
			continue
		}
		if f.FollowerID != 0 && !r.following(f.FollowerID, p.AuthorID) {
			continue
		}
		if q.Search != "" && !contains(p.Title, q.Search) {
			continue
		}
		out = append(out, *r.hydrate(p))
	}
	newestFirst(out, func(p models.Post) time.Time { return p.CreatedAt })
	return page(out, q), int64(len(out)), nil
}

type Contents struct{ *Store }

func (r *Contents) SaveContent(_ context.Context, postID uint, body json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ContentErr != nil {
		return r.ContentErr
	}
	r.contents[postID] = append(json.RawMessage(nil), body...)
	return nil
}

func (r *Contents) GetContent(_ context.Context, postID uint) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contents[postID], nil
}

func (r *Contents) DeleteContent(_ context.Context, postID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contents, postID)
	return nil
}

type Topics struct{ *Store }

func (r *Topics) ListTopics(_ context.Context, q models.PageQuery) ([]models.Topic, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Topic
	for _, t := range r.topics {
		if q.Search == "" || contains(t.Name, q.Search) {
			out = append(out, *t)
		}
	}
	newestFirst(out, func(t models.Topic) time.Time { return t.CreatedAt })
	return page(out, q), int64(len(out)), nil
}

func (r *Topics) GetTopic(_ context.Context, id uint) (*models.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		return nil, errs.NotFound("Topic not found")
	}
	cp := *t
	return &cp, nil
}

func (r *Topics) TopicExists(ctx context.Context, id uint) (bool, error) {
	_, err := r.GetTopic(ctx, id)
	return err == nil, nil
}

func (r *Topics) CreateTopic(_ context.Context, topic *models.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.topics {
		if t.Name == topic.Name {
			return errs.Conflict("Topic already exists")
		}
	}
	topic.ID = r.nextID()
	topic.CreatedAt = r.now()
	cp := *topic
	r.topics[topic.ID] = &cp
	return nil
}

func (r *Topics) UpdateTopic(_ context.Context, topic *models.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[topic.ID]; !ok {
		return errs.NotFound("Topic not found")
	}
	for id, t := range r.topics {
		if id != topic.ID && t.Name == topic.Name {
			return errs.Conflict("Topic already exists")
		}
	}
	cp := *topic
	r.topics[topic.ID] = &cp
	return nil
}

func (r *Topics) DeleteTopic(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[id]; !ok {
		return errs.NotFound("Topic not found")
	}
	delete(r.topics, id)
	return nil
}
