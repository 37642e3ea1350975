package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero fields do not filter.
type PostFilter struct {
	AuthorID      uint
	PublicationID uint
	Status        models.PostStatus
	// FollowerID restricts to authors followed by this user.
	FollowerID uint
	// PublicOnly keeps published posts by active authors.
	PublicOnly bool
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post, topicIDs []uint) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdatePost(ctx context.Context, post *models.Post, topicIDs *[]uint) error
	TransitionStatus(ctx context.Context, id uint, from, to models.PostStatus) (bool, error)
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, f PostFilter, q models.PageQuery) ([]models.Post, int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

const (
	postSlugIndex        = "idx_posts_slug"
	postAuthorTitleIndex = "idx_posts_author_title"
)

// postWriteError separates slug collisions, which callers retry, from
// duplicate titles, which are a client conflict. Any other violation keeps
// the generic translation.
func postWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSlugTaken) {
		return err
	}
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case postSlugIndex:
			return ErrSlugTaken
		case postAuthorTitleIndex:
			return errs.Conflict("Post with this title already exists on this user")
		}
	}
	return translate(err, "Post not found", "Post already exists")
}

// CreatePost inserts the post and its topic links in one transaction.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post, topicIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Topics", "Author", "Publication").Create(post).Error; err != nil {
			return err
		}
		return addTopics(tx, post.ID, topicIDs)
	})
	return postWriteError(err)
}

func addTopics(tx *gorm.DB, postID uint, topicIDs []uint) error {
	ids, _ := models.DiffTopicIDs(nil, topicIDs)
	if len(ids) == 0 {
		return nil
	}
	links := make([]models.PostTopic, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.PostTopic{PostID: postID, TopicID: id})
	}
	return tx.Create(&links).Error
}

func (r *PostgresPostRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author.Profile").
		Preload("Topics").
		Preload("Publication")
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.preloaded(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err, "Post not found", "")
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.preloaded(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, translate(err, "Post not found", "")
	}
	return &post, nil
}

func (r *PostgresPostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, errors.Wrap(err, "check slug")
}

// UpdatePost saves the editable fields. When topicIDs is non-nil the topic
// set is diffed against the stored one and both the removals and additions
// are applied in the same transaction as the field update.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post, topicIDs *[]uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(post).
			Select("title", "slug", "cover_image_url", "updated_at").
			Updates(post)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if topicIDs == nil {
			return nil
		}

		var current []uint
		if err := tx.Model(&models.PostTopic{}).Where("post_id = ?", post.ID).Pluck("topic_id", &current).Error; err != nil {
			return err
		}
		add, remove := models.DiffTopicIDs(current, *topicIDs)
		if len(remove) > 0 {
			if err := tx.Where("post_id = ? AND topic_id IN ?", post.ID, remove).Delete(&models.PostTopic{}).Error; err != nil {
				return err
			}
		}
		return addTopics(tx, post.ID, add)
	})
	return postWriteError(err)
}

// TransitionStatus moves a post from one status to another only if it is
// still in the expected state. It reports whether the transition happened.
func (r *PostgresPostRepository) TransitionStatus(ctx context.Context, id uint, from, to models.PostStatus) (bool, error) {
	updates := map[string]interface{}{"status": to, "updated_at": time.Now()}
	if to == models.PostPublished {
		updates["published_at"] = time.Now()
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "transition post status")
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete post")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Post not found")
	}
	return nil
}

func postFilterSQL(f PostFilter, args map[string]interface{}) string {
	conds := []string{"TRUE"}
	if f.PublicOnly {
		conds = append(conds, "p.status = 'PUBLISHED'", "u.is_active")
	}
	if f.Status != "" {
		conds = append(conds, "p.status = @status")
		args["status"] = string(f.Status)
	}
	if f.AuthorID != 0 {
		conds = append(conds, "p.author_id = @author")
		args["author"] = f.AuthorID
	}
	if f.PublicationID != 0 {
		conds = append(conds, "p.publication_id = @publication")
		args["publication"] = f.PublicationID
	}
	if f.FollowerID != 0 {
		conds = append(conds, "p.author_id IN (SELECT following_id FROM follows WHERE follower_id = @follower)")
		args["follower"] = f.FollowerID
	}
	return "\nFROM posts p\nJOIN users u ON u.id = p.author_id\nWHERE " + strings.Join(conds, " AND ")
}

const postSearchMatch = `
  AND (p.title ILIKE @like OR u.username ILIKE @like
       OR similarity(p.title, @q) > @threshold
       OR similarity(u.username, @q) > @threshold)`

const postSearchRank = `
ORDER BY (CASE WHEN p.title ILIKE @prefix OR u.username ILIKE @prefix THEN 2
               WHEN p.title ILIKE @like OR u.username ILIKE @like THEN 1
               ELSE 0 END)
         + GREATEST(similarity(p.title, @q), similarity(u.username, @q)) DESC,
         p.created_at DESC, p.id DESC
LIMIT @limit OFFSET @offset`

const postRecencyOrder = `
ORDER BY p.created_at DESC, p.id DESC
LIMIT @limit OFFSET @offset`

// ListPosts returns one page of posts newest first, or ranked by relevance
// against title and author username when the query has a search term.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, f PostFilter, q models.PageQuery) ([]models.Post, int64, error) {
	args := searchArgs(q)
	from := postFilterSQL(f, args)
	order := postRecencyOrder
	if q.Search != "" {
		from += postSearchMatch
		order = postSearchRank
	}

	posts := []models.Post{}
	ids, total, err := rankedIDs(ctx, r.db, "SELECT COUNT(*)"+from, "SELECT p.id"+from+order, args)
	if err != nil || len(ids) == 0 {
		return posts, total, err
	}
	if err := r.preloaded(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, 0, errors.Wrap(err, "load posts")
	}
	return orderByIDs(posts, ids, func(p models.Post) uint { return p.ID }), total, nil
}
