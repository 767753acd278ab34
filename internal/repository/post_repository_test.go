package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestPushLikeFilter_GuardsAgainstDuplicates(t *testing.T) {
	postID, userID := bson.NewObjectID(), bson.NewObjectID()

	f := pushLikeFilter(postID, userID)

	assert.Equal(t, postID, f["_id"])
	assert.Equal(t, bson.M{"$ne": userID}, f["likes.user"])
}

func TestPrependUpdate_PushesAtFront(t *testing.T) {
	like := models.Like{ID: bson.NewObjectID(), UserID: bson.NewObjectID()}

	u := prependUpdate("likes", like)

	push := u["$push"].(bson.M)["likes"].(bson.M)
	assert.Equal(t, 0, push["$position"])
	assert.Equal(t, bson.A{like}, push["$each"])
}

// setupTestDB connects to MONGO_TEST_URI and returns a throwaway database.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping Mongo integration test")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("devconnector_test_" + bson.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestPostRepository_LikeLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db, "posts")
	ctx := context.Background()

	owner, liker := bson.NewObjectID(), bson.NewObjectID()
	post := &models.Post{UserID: owner, Text: "integration post text", Date: time.Now().UTC()}
	require.NoError(t, repo.Insert(ctx, post))

	liked, err := repo.PushLike(ctx, post.ID, models.Like{ID: bson.NewObjectID(), UserID: liker})
	require.NoError(t, err)
	require.Len(t, liked.Likes, 1)

	_, err = repo.PushLike(ctx, post.ID, models.Like{ID: bson.NewObjectID(), UserID: liker})
	assert.ErrorIs(t, err, ErrNotFound)

	unliked, err := repo.PullLike(ctx, post.ID, liker)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)

	_, err = repo.PullLike(ctx, post.ID, liker)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_CommentsAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db, "posts")
	ctx := context.Background()

	owner := bson.NewObjectID()
	post := &models.Post{UserID: owner, Text: "integration post text", Date: time.Now().UTC()}
	require.NoError(t, repo.Insert(ctx, post))

	first := models.Comment{ID: bson.NewObjectID(), UserID: owner, Text: "first comment"}
	second := models.Comment{ID: bson.NewObjectID(), UserID: owner, Text: "second comment"}
	_, err := repo.PushComment(ctx, post.ID, first)
	require.NoError(t, err)
	got, err := repo.PushComment(ctx, post.ID, second)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, second.ID, got.Comments[0].ID)

	got, err = repo.PullComment(ctx, post.ID, second.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, first.ID, got.Comments[0].ID)

	assert.ErrorIs(t, repo.DeleteOwned(ctx, post.ID, bson.NewObjectID()), ErrNotFound)
	require.NoError(t, repo.DeleteOwned(ctx, post.ID, owner))

	_, err = repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db, "posts")
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	older := &models.Post{UserID: bson.NewObjectID(), Text: "older post text", Date: base.Add(-time.Hour)}
	newer := &models.Post{UserID: bson.NewObjectID(), Text: "newer post text", Date: base}
	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	require.NoError(t, err)

	repo := NewUserRepository(db, "users")
	require.NoError(t, repo.Insert(ctx, &models.User{Name: "Jane", Email: "jane@example.com"}))
	assert.ErrorIs(t, repo.Insert(ctx, &models.User{Name: "Jane 2", Email: "jane@example.com"}), ErrDuplicate)

	u, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)

	profiles := NewProfileRepository(db, "profiles")
	ok, err := profiles.ExistsForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
