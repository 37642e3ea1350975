package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
)

type ReadingLists struct{ *Store }

func (r *ReadingLists) ListByUser(_ context.Context, userID uint) ([]models.ReadingList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ReadingList{}
	for _, l := range r.lists {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ReadingLists) nameTaken(list *models.ReadingList) bool {
	for id, l := range r.lists {
		if id != list.ID && l.UserID == list.UserID && l.Name == list.Name {
			return true
		}
	}
	return false
}

func (r *ReadingLists) CreateList(_ context.Context, list *models.ReadingList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(list) {
		return errs.Conflict("Reading list with this name already exists")
	}
	list.ID = r.nextID()
	list.CreatedAt = r.now()
	list.UpdatedAt = list.CreatedAt
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r *ReadingLists) GetList(_ context.Context, id uint) (*models.ReadingList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[id]
	if !ok {
		return nil, errs.NotFound("Reading list not found")
	}
	cp := *l
	return &cp, nil
}

func (r *ReadingLists) UpdateList(_ context.Context, list *models.ReadingList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[list.ID]; !ok {
		return errs.NotFound("Reading list not found")
	}
	if r.nameTaken(list) {
		return errs.Conflict("Reading list with this name already exists")
	}
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r *ReadingLists) DeleteList(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[id]; !ok {
		return errs.NotFound("Reading list not found")
	}
	delete(r.lists, id)
	kept := r.saved[:0]
	for _, s := range r.saved {
		if s.ReadingListID != id {
			kept = append(kept, s)
		}
	}
	r.saved = kept
	return nil
}

func (r *ReadingLists) SavePost(_ context.Context, saved *models.SavedPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[saved.PostID]; !ok {
		return errs.NotFound("Post not found")
	}
	for _, s := range r.saved {
		if s.ReadingListID == saved.ReadingListID && s.PostID == saved.PostID {
			return errs.Conflict("Post is already saved in this reading list")
		}
	}
	saved.ID = r.nextID()
	saved.CreatedAt = r.now()
	r.saved = append(r.saved, *saved)
	return nil
}

func (r *ReadingLists) RemoveSavedPost(_ context.Context, listID, postID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.saved {
		if s.ReadingListID == listID && s.PostID == postID {
			r.saved = append(r.saved[:i], r.saved[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("Saved post not found")
}

func (r *ReadingLists) pageSaved(q models.PageQuery, match func(models.SavedPost) bool) ([]models.SavedPost, int64) {
	var out []models.SavedPost
	for _, s := range r.saved {
		p, ok := r.posts[s.PostID]
		if !ok || p.Status != models.PostPublished || !r.userActive(p.AuthorID) || !match(s) {
			continue
		}
		cp := s
		cp.Post = (&Posts{r.Store}).hydrate(p)
		out = append(out, cp)
	}
	newestFirst(out, func(s models.SavedPost) time.Time { return s.CreatedAt })
	return page(out, q), int64(len(out))
}

func (r *ReadingLists) ListSavedPosts(_ context.Context, listID uint, q models.PageQuery) ([]models.SavedPost, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, total := r.pageSaved(q, func(s models.SavedPost) bool { return s.ReadingListID == listID })
	return out, total, nil
}

func (r *ReadingLists) ListSavedPostsForUser(_ context.Context, userID uint, q models.PageQuery) ([]models.SavedPost, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, total := r.pageSaved(q, func(s models.SavedPost) bool {
		l, ok := r.lists[s.ReadingListID]
		return ok && l.UserID == userID
	})
	return out, total, nil
}

type Reports struct{ *Store }

func (r *Reports) CreateReport(_ context.Context, report *models.ReportedPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[report.PostID]; !ok {
		return errs.NotFound("Post not found")
	}
	for _, x := range r.reports {
		if x.PostID == report.PostID && x.UserID == report.UserID {
			return errs.Conflict("You have already reported this post")
		}
	}
	report.ID = r.nextID()
	report.CreatedAt = r.now()
	r.reports = append(r.reports, *report)
	return nil
}

func (r *Reports) ListReports(_ context.Context, q models.ReportQuery) ([]models.ReportedPost, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ReportedPost
	for _, x := range r.reports {
		p, ok := r.posts[x.PostID]
		u := r.userCopy(x.UserID)
		if !ok || u == nil {
			continue
		}
		if q.TitleSearch != "" && !contains(p.Title, q.TitleSearch) {
			continue
		}
		if q.UserSearch != "" && !contains(u.Username, q.UserSearch) {
			continue
		}
		cp := x
		cp.Post = (&Posts{r.Store}).hydrate(p)
		cp.User = u
		out = append(out, cp)
	}
	newestFirst(out, func(x models.ReportedPost) time.Time { return x.CreatedAt })
	return page(out, q.PageQuery), int64(len(out)), nil
}

func (r *Reports) DeleteReport(_ context.Context, postID, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.reports {
		if x.PostID == postID && x.UserID == userID {
			r.reports = append(r.reports[:i], r.reports[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("Reported post not found")
}
