package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/mongodb"
	"github.com/phrazzld/blog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("Create", func(mt *mtest.T) {
		s := mongodb.NewUserStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := domain.NewUser("alice", "hash")
		require.NoError(mt, err)

		created, err := s.Create(context.Background(), user)

		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(created.ID))
		assert.Equal(mt, "alice", created.Username)
	})

	mt.Run("Create duplicate username", func(mt *mtest.T) {
		s := mongodb.NewUserStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: blog.users index: username_unique",
		}))

		_, err := s.Create(context.Background(), &domain.User{Username: "alice", HashedPassword: "hash"})

		assert.ErrorIs(mt, err, store.ErrUsernameExists)
	})

	mt.Run("GetByUsername", func(mt *mtest.T) {
		s := mongodb.NewUserStore(mt.DB, nil)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "hashedPassword", Value: "hash"},
			{Key: "createdAt", Value: time.Now()},
		}))

		user, err := s.GetByUsername(context.Background(), "alice")

		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), user.ID)
		assert.Equal(mt, "hash", user.HashedPassword)
	})

	mt.Run("GetByID not found", func(mt *mtest.T) {
		s := mongodb.NewUserStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.users", mtest.FirstBatch))

		_, err := s.GetByID(context.Background(), primitive.NewObjectID().Hex())

		assert.ErrorIs(mt, err, store.ErrUserNotFound)
	})

	mt.Run("GetByID malformed", func(mt *mtest.T) {
		s := mongodb.NewUserStore(mt.DB, nil)

		_, err := s.GetByID(context.Background(), "nope")

		assert.ErrorIs(mt, err, store.ErrUserNotFound)
	})

	mt.Run("EnsureIndexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, mongodb.EnsureIndexes(context.Background(), mt.DB))
	})
}
