package repotest

import (
	"context"
	"sort"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
)

type Users struct{ *Store }

func (r *Users) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return errs.Conflict("Email already exists")
		}
		if u.Username == user.Username {
			return errs.Conflict("Username already exists")
		}
		if user.FirebaseUID != nil && u.FirebaseUID != nil && *u.FirebaseUID == *user.FirebaseUID {
			return errs.Conflict("User already exists")
		}
	}
	user.ID = r.nextID()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt = r.now()
	user.UpdatedAt = user.CreatedAt
	if user.Profile != nil {
		user.Profile.ID = r.nextID()
		user.Profile.UserID = user.ID
	}
	cp := *user
	if user.Profile != nil {
		p := *user.Profile
		cp.Profile = &p
	}
	r.users[user.ID] = &cp
	return nil
}

func (r *Users) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if match(u) {
			return r.userCopy(id), nil
		}
	}
	return nil, errs.NotFound("User not found")
}

func (r *Users) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *Users) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *Users) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *Users) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (r *Users) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (r *Users) UpdateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[user.ID]
	if !ok {
		return errs.NotFound("User not found")
	}
	cp := *user
	cp.Profile = cur.Profile
	cp.UpdatedAt = r.now()
	r.users[user.ID] = &cp
	return nil
}

func (r *Users) UpdateProfile(_ context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[profile.UserID]
	if !ok {
		return errs.NotFound("Profile not found")
	}
	p := *profile
	u.Profile = &p
	return nil
}

func (r *Users) SetActive(_ context.Context, id uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errs.NotFound("User not found")
	}
	u.IsActive = active
	return nil
}

func (r *Users) DeleteUser(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return errs.NotFound("User not found")
	}
	delete(r.users, id)
	return nil
}

func (r *Users) SearchUsers(_ context.Context, q models.PageQuery, includeInactive bool) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for id, u := range r.users {
		if !includeInactive && !u.IsActive {
			continue
		}
		if q.Search != "" && !contains(u.Username, q.Search) {
			continue
		}
		out = append(out, *r.userCopy(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, q), int64(len(out)), nil
}
