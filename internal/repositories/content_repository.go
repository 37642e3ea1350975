package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContentRepository stores the rich text body of posts.
type ContentRepository interface {
	SaveContent(ctx context.Context, postID uint, body json.RawMessage) error
	GetContent(ctx context.Context, postID uint) (json.RawMessage, error)
	DeleteContent(ctx context.Context, postID uint) error
}

// MongoContentRepository implements ContentRepository for MongoDB
type MongoContentRepository struct {
	collection *mongo.Collection
}

// NewMongoContentRepository creates a new MongoContentRepository
func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{collection: db.Collection("post_contents")}
}

// EnsureIndexes creates the unique post_id index.
func (r *MongoContentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "post_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrap(err, "create post_contents index")
}

// SaveContent upserts the body and bumps its revision.
func (r *MongoContentRepository) SaveContent(ctx context.Context, postID uint, body json.RawMessage) error {
	update := bson.M{
		"$set": bson.M{
			"body":       string(body),
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"revision": 1},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"post_id": postID}, update, options.Update().SetUpsert(true))
	return errors.Wrap(err, "save post content")
}

// GetContent returns nil when the post has no stored body.
func (r *MongoContentRepository) GetContent(ctx context.Context, postID uint) (json.RawMessage, error) {
	var doc models.PostContent
	err := r.collection.FindOne(ctx, bson.M{"post_id": postID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get post content")
	}
	return json.RawMessage(doc.Body), nil
}

func (r *MongoContentRepository) DeleteContent(ctx context.Context, postID uint) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"post_id": postID})
	return errors.Wrap(err, "delete post content")
}
