package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// TopicRepository manages the topic catalog.
type TopicRepository interface {
	ListTopics(ctx context.Context, q models.PageQuery) ([]models.Topic, int64, error)
	GetTopic(ctx context.Context, id uint) (*models.Topic, error)
	TopicExists(ctx context.Context, id uint) (bool, error)
	CreateTopic(ctx context.Context, topic *models.Topic) error
	UpdateTopic(ctx context.Context, topic *models.Topic) error
	DeleteTopic(ctx context.Context, id uint) error
}

// PostgresTopicRepository implements TopicRepository for PostgreSQL
type PostgresTopicRepository struct {
	db *gorm.DB
}

// NewPostgresTopicRepository creates a new PostgresTopicRepository
func NewPostgresTopicRepository(db *gorm.DB) *PostgresTopicRepository {
	return &PostgresTopicRepository{db: db}
}

func (r *PostgresTopicRepository) ListTopics(ctx context.Context, q models.PageQuery) ([]models.Topic, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Topic{})
		if q.Search != "" {
			query = query.Where("name ILIKE ?", likePattern(q.Search))
		}
		return query
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count topics")
	}
	topics := []models.Topic{}
	err := base().Order("name ASC").Offset(q.Offset()).Limit(q.Limit).Find(&topics).Error
	return topics, total, errors.Wrap(err, "list topics")
}

func (r *PostgresTopicRepository) GetTopic(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, translate(err, "Topic not found", "")
	}
	return &topic, nil
}

func (r *PostgresTopicRepository) TopicExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", id).Count(&count).Error
	return count > 0, errors.Wrap(err, "check topic")
}

func (r *PostgresTopicRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	return translate(r.db.WithContext(ctx).Create(topic).Error, "", "Topic already exists")
}

func (r *PostgresTopicRepository) UpdateTopic(ctx context.Context, topic *models.Topic) error {
	return translate(r.db.WithContext(ctx).Save(topic).Error, "Topic not found", "Topic already exists")
}

func (r *PostgresTopicRepository) DeleteTopic(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Topic{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete topic")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Topic not found")
	}
	return nil
}
