package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository covers the reaction type catalog, reactions and views.
type ReactionRepository interface {
	ListTypes(ctx context.Context) ([]models.ReactionType, error)
	GetType(ctx context.Context, id uint) (*models.ReactionType, error)
	CreateType(ctx context.Context, rt *models.ReactionType) error
	UpdateType(ctx context.Context, rt *models.ReactionType) error
	DeleteType(ctx context.Context, id uint) error

	CreateReaction(ctx context.Context, reaction *models.PostReaction) error
	DeleteReaction(ctx context.Context, postID, userID uint) error
	CountReactions(ctx context.Context, postID uint) (int64, error)
	ReactionsForAuthor(ctx context.Context, authorID uint) ([]models.PostReaction, error)

	RecordView(ctx context.Context, view *models.PostView) (bool, error)
	CountViews(ctx context.Context, postID uint) (int64, error)
	ViewsForAuthor(ctx context.Context, authorID uint) ([]models.PostView, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) ListTypes(ctx context.Context) ([]models.ReactionType, error) {
	types := []models.ReactionType{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, errors.Wrap(err, "list reaction types")
}

func (r *PostgresReactionRepository) GetType(ctx context.Context, id uint) (*models.ReactionType, error) {
	var rt models.ReactionType
	if err := r.db.WithContext(ctx).First(&rt, id).Error; err != nil {
		return nil, translate(err, "Reaction type not found", "")
	}
	return &rt, nil
}

func (r *PostgresReactionRepository) CreateType(ctx context.Context, rt *models.ReactionType) error {
	return translate(r.db.WithContext(ctx).Create(rt).Error, "", "Reaction type already exists")
}

func (r *PostgresReactionRepository) UpdateType(ctx context.Context, rt *models.ReactionType) error {
	return translate(r.db.WithContext(ctx).Save(rt).Error, "Reaction type not found", "Reaction type already exists")
}

func (r *PostgresReactionRepository) DeleteType(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ReactionType{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete reaction type")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Reaction type not found")
	}
	return nil
}

// CreateReaction relies on the (post, user) unique index to reject a second reaction.
func (r *PostgresReactionRepository) CreateReaction(ctx context.Context, reaction *models.PostReaction) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(reaction).Error
	return translate(err, "Post not found", "This user have reacted on this post.")
}

func (r *PostgresReactionRepository) DeleteReaction(ctx context.Context, postID, userID uint) error {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostReaction{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete reaction")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("This user has not reacted on this post.")
	}
	return nil
}

func (r *PostgresReactionRepository) CountReactions(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostReaction{}).Where("post_id = ?", postID).Count(&count).Error
	return count, errors.Wrap(err, "count reactions")
}

func (r *PostgresReactionRepository) ReactionsForAuthor(ctx context.Context, authorID uint) ([]models.PostReaction, error) {
	reactions := []models.PostReaction{}
	err := r.db.WithContext(ctx).
		Joins("JOIN posts ON posts.id = post_reactions.post_id").
		Where("posts.author_id = ?", authorID).
		Order("post_reactions.created_at ASC").
		Find(&reactions).Error
	return reactions, errors.Wrap(err, "author reactions")
}

// RecordView inserts the view unless one exists and reports whether a row was created.
func (r *PostgresReactionRepository) RecordView(ctx context.Context, view *models.PostView) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(view)
	if res.Error != nil {
		return false, translate(res.Error, "Post not found", "")
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresReactionRepository) CountViews(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostView{}).Where("post_id = ?", postID).Count(&count).Error
	return count, errors.Wrap(err, "count views")
}

func (r *PostgresReactionRepository) ViewsForAuthor(ctx context.Context, authorID uint) ([]models.PostView, error) {
	views := []models.PostView{}
	err := r.db.WithContext(ctx).
		Joins("JOIN posts ON posts.id = post_views.post_id").
		Where("posts.author_id = ?", authorID).
		Order("post_views.created_at ASC").
		Find(&views).Error
	return views, errors.Wrap(err, "author views")
}
