package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error)
	ListFollowing(ctx context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowerEdges(ctx context.Context, userID uint) ([]models.Follow, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts the edge; the (follower, following) unique index turns
// a concurrent duplicate into a Conflict.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(follow).Error
	return translate(err, "User not found", "Already following this user")
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete follow")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Follow relationship not found")
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error
	return count > 0, errors.Wrap(err, "check follow")
}

// listEdgeUsers pages the active users on the other end of userID's edges.
func (r *PostgresFollowRepository) listEdgeUsers(ctx context.Context, selectCol, whereCol string, userID uint, q models.PageQuery) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Where("is_active = ?", true).
			Where("id IN (?)", r.db.Table("follows").Select(selectCol).Where(whereCol+" = ?", userID))
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count follow edges")
	}
	users := []models.User{}
	err := base().Preload("Profile").Order("username ASC").Offset(q.Offset()).Limit(q.Limit).Find(&users).Error
	return users, total, errors.Wrap(err, "list follow edges")
}

func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error) {
	return r.listEdgeUsers(ctx, "follower_id", "following_id", userID, q)
}

func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error) {
	return r.listEdgeUsers(ctx, "following_id", "follower_id", userID, q)
}

// FollowerIDs returns the active followers of userID, used for fan-out.
func (r *PostgresFollowRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Joins("JOIN users ON users.id = follows.follower_id AND users.is_active").
		Where("follows.following_id = ?", userID).
		Pluck("follows.follower_id", &ids).Error
	return ids, errors.Wrap(err, "follower ids")
}

func (r *PostgresFollowRepository) FollowerEdges(ctx context.Context, userID uint) ([]models.Follow, error) {
	edges := []models.Follow{}
	err := r.db.WithContext(ctx).Where("following_id = ?", userID).Order("created_at ASC").Find(&edges).Error
	return edges, errors.Wrap(err, "follower edges")
}
