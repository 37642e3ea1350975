package models

import (
	"encoding/json"
	"strings"
	"time"
)

// PostStatus is the publishing state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "DRAFT"
	PostPending   PostStatus = "PENDING"
	PostPublished PostStatus = "PUBLISHED"
)

// Post holds the relational part of an article. The rich text body lives in
// the content store and is attached on reads that need it.
type Post struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Title         string          `json:"title" gorm:"size:255;uniqueIndex:idx_posts_author_title"`
	Slug          string          `json:"slug" gorm:"size:320;uniqueIndex:idx_posts_slug"`
	CoverImageURL *string         `json:"coverImageUrl"`
	Status        PostStatus      `json:"status" gorm:"size:10;index"`
	AuthorID      uint            `json:"authorId" gorm:"index;uniqueIndex:idx_posts_author_title"`
	Author        *User           `json:"author,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	PublicationID *uint           `json:"publicationId" gorm:"index"`
	Publication   *Publication    `json:"publication,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Topics        []Topic         `json:"topics" gorm:"many2many:post_topics"`
	Content       json.RawMessage `json:"content,omitempty" gorm:"-"`
	PublishedAt   *time.Time      `json:"publishedAt"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PostTopic is the join row between posts and topics.
type PostTopic struct {
	PostID    uint      `gorm:"primaryKey"`
	TopicID   uint      `gorm:"primaryKey"`
	CreatedAt time.Time
}

type Topic struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
}

// TopicIDs returns the ids of the topics currently attached to the post.
func (p *Post) TopicIDs() []uint {
	ids := make([]uint, 0, len(p.Topics))
	for _, t := range p.Topics {
		ids = append(ids, t.ID)
	}
	return ids
}

// DiffTopicIDs returns the topics to add (requested but not current) and to
// remove (current but not requested). Duplicates in either input are ignored.
func DiffTopicIDs(current, requested []uint) (add, remove []uint) {
	cur := make(map[uint]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	req := make(map[uint]struct{}, len(requested))
	for _, id := range requested {
		if _, dup := req[id]; dup {
			continue
		}
		req[id] = struct{}{}
		if _, ok := cur[id]; !ok {
			add = append(add, id)
		}
	}
	seen := make(map[uint]struct{}, len(current))
	for _, id := range current {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := req[id]; !ok {
			remove = append(remove, id)
		}
	}
	return add, remove
}

// CreatePostRequest is used both for personal posts and publication submissions.
type CreatePostRequest struct {
	Title         string          `json:"title" validate:"required,min=2,max=255"`
	Content       json.RawMessage `json:"content" validate:"json_present"`
	CoverImageURL *string         `json:"coverImageUrl" validate:"omitempty,url"`
	TopicIDs      []uint          `json:"topicIds" validate:"omitempty,max=10,unique,dive,topic_exists"`
	Status        PostStatus      `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

func (r *CreatePostRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	trimPtr(r.CoverImageURL)
}

// UpdatePostRequest edits a post in place. A nil TopicIDs keeps the current
// topics; an empty list clears them.
type UpdatePostRequest struct {
	Title         *string         `json:"title" validate:"omitempty,min=2,max=255"`
	Content       json.RawMessage `json:"content"`
	CoverImageURL *string         `json:"coverImageUrl" validate:"omitempty,url"`
	TopicIDs      *[]uint         `json:"topicIds" validate:"omitempty,max=10,unique,dive,topic_exists"`
}

func (r *UpdatePostRequest) Normalize() {
	trimPtr(r.Title)
	trimPtr(r.CoverImageURL)
}

type TopicRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func (r *TopicRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// PostListQuery filters the caller's own posts by status.
type PostListQuery struct {
	PageQuery
	Status PostStatus `query:"status" validate:"omitempty,oneof=DRAFT PENDING PUBLISHED"`
}
