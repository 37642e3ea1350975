package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadingListRepository covers reading lists and the posts saved in them.
type ReadingListRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.ReadingList, error)
	CreateList(ctx context.Context, list *models.ReadingList) error
	GetList(ctx context.Context, id uint) (*models.ReadingList, error)
	UpdateList(ctx context.Context, list *models.ReadingList) error
	DeleteList(ctx context.Context, id uint) error

	SavePost(ctx context.Context, saved *models.SavedPost) error
	RemoveSavedPost(ctx context.Context, listID, postID uint) error
	ListSavedPosts(ctx context.Context, listID uint, q models.PageQuery) ([]models.SavedPost, int64, error)
	ListSavedPostsForUser(ctx context.Context, userID uint, q models.PageQuery) ([]models.SavedPost, int64, error)
}

// PostgresReadingListRepository implements ReadingListRepository for PostgreSQL
type PostgresReadingListRepository struct {
	db *gorm.DB
}

// NewPostgresReadingListRepository creates a new PostgresReadingListRepository
func NewPostgresReadingListRepository(db *gorm.DB) *PostgresReadingListRepository {
	return &PostgresReadingListRepository{db: db}
}

func (r *PostgresReadingListRepository) ListByUser(ctx context.Context, userID uint) ([]models.ReadingList, error) {
	lists := []models.ReadingList{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&lists).Error
	return lists, errors.Wrap(err, "list reading lists")
}

func (r *PostgresReadingListRepository) CreateList(ctx context.Context, list *models.ReadingList) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(list).Error
	return translate(err, "", "Reading list with this name already exists")
}

func (r *PostgresReadingListRepository) GetList(ctx context.Context, id uint) (*models.ReadingList, error) {
	var list models.ReadingList
	if err := r.db.WithContext(ctx).First(&list, id).Error; err != nil {
		return nil, translate(err, "Reading list not found", "")
	}
	return &list, nil
}

func (r *PostgresReadingListRepository) UpdateList(ctx context.Context, list *models.ReadingList) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(list).Error
	return translate(err, "Reading list not found", "Reading list with this name already exists")
}

func (r *PostgresReadingListRepository) DeleteList(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ReadingList{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete reading list")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Reading list not found")
	}
	return nil
}

// SavePost relies on the (list, post) unique index to reject duplicates.
func (r *PostgresReadingListRepository) SavePost(ctx context.Context, saved *models.SavedPost) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(saved).Error
	return translate(err, "Post not found", "Post is already saved in this reading list")
}

func (r *PostgresReadingListRepository) RemoveSavedPost(ctx context.Context, listID, postID uint) error {
	res := r.db.WithContext(ctx).Where("reading_list_id = ? AND post_id = ?", listID, postID).Delete(&models.SavedPost{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "remove saved post")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Saved post not found")
	}
	return nil
}

func (r *PostgresReadingListRepository) pageSaved(ctx context.Context, scope func(*gorm.DB) *gorm.DB, q models.PageQuery) ([]models.SavedPost, int64, error) {
	base := func() *gorm.DB {
		return scope(r.db.WithContext(ctx).Model(&models.SavedPost{}).
			Joins("JOIN posts ON posts.id = saved_posts.post_id AND posts.status = ?", models.PostPublished).
			Joins("JOIN users ON users.id = posts.author_id AND users.is_active"))
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count saved posts")
	}
	saved := []models.SavedPost{}
	err := base().
		Preload("Post.Author.Profile").
		Preload("Post.Topics").
		Order("saved_posts.created_at DESC, saved_posts.id DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&saved).Error
	return saved, total, errors.Wrap(err, "list saved posts")
}

func (r *PostgresReadingListRepository) ListSavedPosts(ctx context.Context, listID uint, q models.PageQuery) ([]models.SavedPost, int64, error) {
	return r.pageSaved(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("saved_posts.reading_list_id = ?", listID)
	}, q)
}

func (r *PostgresReadingListRepository) ListSavedPostsForUser(ctx context.Context, userID uint, q models.PageQuery) ([]models.SavedPost, int64, error) {
	return r.pageSaved(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN reading_lists ON reading_lists.id = saved_posts.reading_list_id").
			Where("reading_lists.user_id = ?", userID)
	}, q)
}
