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
)

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	HashedPassword string             `bson:"hashedPassword"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		HashedPassword: d.HashedPassword,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

// UserStore implements store.UserStore on a MongoDB collection.
// Username uniqueness relies on the index created by EnsureIndexes.
type UserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewUserStore creates a UserStore on the users collection of db.
func NewUserStore(db *mongo.Database, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		coll:   db.Collection(UsersCollection),
		logger: logger.With(slog.String("component", "mongo_user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	doc := userDocument{
		ID:             primitive.NewObjectID(),
		Username:       user.Username,
		HashedPassword: user.HashedPassword,
		CreatedAt:      user.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.CreatedAt = doc.CreatedAt.Truncate(time.Millisecond)

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Debug("username already taken", slog.String("username", user.Username))
			return nil, store.ErrUsernameExists
		}
		log.Error("failed to insert user", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "create", "insert failed", err)
	}

	log.Info("user created successfully", slog.String("user_id", doc.ID.Hex()))
	return doc.toDomain(), nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find user",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "find failed", err)
	}
	return doc.toDomain(), nil
}
