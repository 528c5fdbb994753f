package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// postDocument is the stored shape of a post.
type postDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Body          string             `bson:"body"`
	Tags          []string           `bson:"tags"`
	PublishedDate time.Time          `bson:"publishedDate"`
	AuthorID      string             `bson:"authorId,omitempty"`
}

func (d *postDocument) toDomain() *domain.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Post{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Body:          d.Body,
		Tags:          tags,
		PublishedDate: d.PublishedDate.UTC(),
		AuthorID:      d.AuthorID,
	}
}

// PostStore implements store.PostStore on a MongoDB collection.
type PostStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewPostStore creates a PostStore on the posts collection of db.
func NewPostStore(db *mongo.Database, logger *slog.Logger) *PostStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostStore{
		coll:   db.Collection(PostsCollection),
		logger: logger.With(slog.String("component", "mongo_post_store")),
	}
}

var _ store.PostStore = (*PostStore)(nil)

// ValidID reports whether id is a 24-character hex ObjectID.
func (s *PostStore) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// Create implements store.PostStore.Create
func (s *PostStore) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	doc := postDocument{
		ID:            primitive.NewObjectID(),
		Title:         post.Title,
		Body:          post.Body,
		Tags:          append([]string{}, post.Tags...),
		PublishedDate: post.PublishedDate,
		AuthorID:      post.AuthorID,
	}
	if doc.PublishedDate.IsZero() {
		doc.PublishedDate = time.Now().UTC()
	}
	// MongoDB stores millisecond precision; truncate so the returned record matches a re-read.
	doc.PublishedDate = doc.PublishedDate.Truncate(time.Millisecond)

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		log.Error("failed to insert post", slog.String("error", err.Error()))
		return nil, store.NewStoreError("post", "create", "insert failed", err)
	}

	log.Info("post created successfully", slog.String("post_id", doc.ID.Hex()))
	return doc.toDomain(), nil
}

// GetByID implements store.PostStore.GetByID
func (s *PostStore) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrPostNotFound
	}

	var doc postDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrPostNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find post",
			slog.String("error", err.Error()),
			slog.String("post_id", id))
		return nil, store.NewStoreError("post", "get", "find failed", err)
	}
	return doc.toDomain(), nil
}

// List implements store.PostStore.List. ObjectIDs grow with insertion time,
// so sorting on _id descending yields newest first.
func (s *PostStore) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		log.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, store.NewStoreError("post", "list", "find failed", err)
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("failed to decode posts", slog.String("error", err.Error()))
		return nil, store.NewStoreError("post", "list", "decode failed", err)
	}

	posts := make([]*domain.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toDomain())
	}
	return posts, nil
}

// Count implements store.PostStore.Count
func (s *PostStore) Count(ctx context.Context) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count posts",
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("post", "count", "count failed", err)
	}
	return count, nil
}

// Update implements store.PostStore.Update with a $set of the patched fields.
func (s *PostStore) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrPostNotFound
	}
	if patch.IsEmpty() {
		return s.GetByID(ctx, id)
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Body != nil {
		set["body"] = *patch.Body
	}
	if patch.SetTags {
		set["tags"] = append([]string{}, patch.Tags...)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDocument
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrPostNotFound
		}
		log.Error("failed to update post",
			slog.String("error", err.Error()),
			slog.String("post_id", id))
		return nil, store.NewStoreError("post", "update", "update failed", err)
	}

	log.Info("post updated successfully", slog.String("post_id", id))
	return doc.toDomain(), nil
}

// Delete implements store.PostStore.Delete
func (s *PostStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrPostNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		log.Error("failed to delete post",
			slog.String("error", err.Error()),
			slog.String("post_id", id))
		return store.NewStoreError("post", "delete", "delete failed", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrPostNotFound
	}

	log.Info("post deleted successfully", slog.String("post_id", id))
	return nil
}
