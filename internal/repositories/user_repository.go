package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	SetActive(ctx context.Context, id uint, active bool) error
	DeleteUser(ctx context.Context, id uint) error
	SearchUsers(ctx context.Context, q models.PageQuery, includeInactive bool) ([]models.User, int64, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts the user and its profile in one transaction.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if constraint, ok := uniqueViolation(err); ok {
		if strings.Contains(constraint, "email") {
			return errs.Conflict("Email already exists")
		}
		return errs.Conflict("Username already exists")
	}
	return errors.Wrap(err, "create user")
}

func (r *PostgresUserRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").Where(query, arg).First(&user).Error
	if err != nil {
		return nil, translate(err, "User not found", "")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.first(ctx, "firebase_uid = ?", uid)
}

func (r *PostgresUserRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error
	return count > 0, errors.Wrap(err, "check user exists")
}

func (r *PostgresUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *PostgresUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(email))
}

// UpdateUser saves account fields; the profile is updated separately.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Omit("Profile").Save(user).Error
	return translate(err, "User not found", "User already exists")
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return translate(r.db.WithContext(ctx).Save(profile).Error, "Profile not found", "")
}

func (r *PostgresUserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return errors.Wrap(res.Error, "set user active")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("User not found")
	}
	return nil
}

// DeleteUser hard-deletes the account; dependent rows cascade.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete user")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("User not found")
	}
	return nil
}

const userSearchFilter = `
FROM users u
LEFT JOIN profiles pr ON pr.user_id = u.id
WHERE (@all OR u.is_active)
  AND (u.username ILIKE @like OR pr.name ILIKE @like
       OR similarity(u.username, @q) > @threshold
       OR similarity(COALESCE(pr.name, ''), @q) > @threshold)`

const userSearchRank = `
ORDER BY (CASE WHEN u.username ILIKE @prefix THEN 2
               WHEN u.username ILIKE @like OR pr.name ILIKE @like THEN 1
               ELSE 0 END)
         + GREATEST(similarity(u.username, @q), similarity(COALESCE(pr.name, ''), @q)) DESC,
         u.created_at DESC, u.id DESC
LIMIT @limit OFFSET @offset`

// SearchUsers lists users newest first, or ranked by relevance when a search
// term is present. Inactive users are only included for admin listings.
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, q models.PageQuery, includeInactive bool) ([]models.User, int64, error) {
	users := []models.User{}
	if q.Search == "" {
		var total int64
		base := func() *gorm.DB {
			query := r.db.WithContext(ctx).Model(&models.User{})
			if !includeInactive {
				query = query.Where("is_active = ?", true)
			}
			return query
		}
		if err := base().Count(&total).Error; err != nil {
			return nil, 0, errors.Wrap(err, "count users")
		}
		err := base().Preload("Profile").Order("created_at DESC, id DESC").Offset(q.Offset()).Limit(q.Limit).Find(&users).Error
		return users, total, errors.Wrap(err, "list users")
	}

	args := searchArgs(q)
	args["all"] = includeInactive
	ids, total, err := rankedIDs(ctx, r.db,
		"SELECT COUNT(*)"+userSearchFilter,
		"SELECT u.id"+userSearchFilter+userSearchRank, args)
	if err != nil || len(ids) == 0 {
		return users, total, err
	}
	if err := r.db.WithContext(ctx).Preload("Profile").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "load users")
	}
	return orderByIDs(users, ids, func(u models.User) uint { return u.ID }), total, nil
}
