package models

import "time"

// PostContent is the rich text body of a post, stored as a document keyed by post id.
type PostContent struct {
	PostID    uint      `bson:"post_id"`
	Body      string    `bson:"body"` // raw JSON produced by the editor
	Revision  int       `bson:"revision"`
	UpdatedAt time.Time `bson:"updated_at"`
}
