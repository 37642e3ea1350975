package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository stores user reports of posts for moderation.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.ReportedPost) error
	ListReports(ctx context.Context, q models.ReportQuery) ([]models.ReportedPost, int64, error)
	DeleteReport(ctx context.Context, postID, userID uint) error
}

// PostgresReportRepository implements ReportRepository for PostgreSQL
type PostgresReportRepository struct {
	db *gorm.DB
}

// NewPostgresReportRepository creates a new PostgresReportRepository
func NewPostgresReportRepository(db *gorm.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) CreateReport(ctx context.Context, report *models.ReportedPost) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
	return translate(err, "Post not found", "You have already reported this post")
}

// ListReports filters by post title and reporter username.
func (r *PostgresReportRepository) ListReports(ctx context.Context, q models.ReportQuery) ([]models.ReportedPost, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.ReportedPost{}).
			Joins("JOIN posts ON posts.id = reported_posts.post_id").
			Joins("JOIN users ON users.id = reported_posts.user_id")
		if q.TitleSearch != "" {
			query = query.Where("posts.title ILIKE ?", likePattern(q.TitleSearch))
		}
		if q.UserSearch != "" {
			query = query.Where("users.username ILIKE ?", likePattern(q.UserSearch))
		}
		return query
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count reports")
	}
	reports := []models.ReportedPost{}
	err := base().
		Preload("Post.Author.Profile").
		Preload("User.Profile").
		Order("reported_posts.created_at DESC, reported_posts.id DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&reports).Error
	return reports, total, errors.Wrap(err, "list reports")
}

func (r *PostgresReportRepository) DeleteReport(ctx context.Context, postID, userID uint) error {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.ReportedPost{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete report")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Reported post not found")
	}
	return nil
}
