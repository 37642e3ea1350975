package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, q models.PageQuery) ([]models.Comment, int64, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return errors.Wrap(r.db.WithContext(ctx).Omit("Author", "Post").Create(comment).Error, "create comment")
}

func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author.Profile").First(&comment, id).Error; err != nil {
		return nil, translate(err, "Comment not found", "")
	}
	return &comment, nil
}

// ListByPost returns comments oldest first, hiding those of inactive users.
func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID uint, q models.PageQuery) ([]models.Comment, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Comment{}).
			Joins("JOIN users ON users.id = comments.author_id AND users.is_active").
			Where("comments.post_id = ?", postID)
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count comments")
	}
	comments := []models.Comment{}
	err := base().Preload("Author.Profile").
		Order("comments.created_at ASC, comments.id ASC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&comments).Error
	return comments, total, errors.Wrap(err, "list comments")
}

func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(comment).Select("content", "updated_at").Updates(comment)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update comment")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Comment not found")
	}
	return nil
}

func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete comment")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Comment not found")
	}
	return nil
}
