package services

import (
	"context"

	"devconnector/internal/cache"
	"devconnector/internal/events"
	"devconnector/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PostStore is the document store for posts. Guarded updates report
// repository.ErrNotFound when the post is missing or the guard did not hold.
type PostStore interface {
	List(ctx context.Context) ([]models.Post, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error)
	Insert(ctx context.Context, p *models.Post) error
	DeleteOwned(ctx context.Context, id, owner bson.ObjectID) error
	PushLike(ctx context.Context, postID bson.ObjectID, like models.Like) (*models.Post, error)
	PullLike(ctx context.Context, postID, userID bson.ObjectID) (*models.Post, error)
	PushComment(ctx context.Context, postID bson.ObjectID, c models.Comment) (*models.Post, error)
	PullComment(ctx context.Context, postID, commentID bson.ObjectID) (*models.Post, error)
}

type ProfileChecker interface {
	ExistsForUser(ctx context.Context, userID bson.ObjectID) (bool, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
}

// PostCache is a read-through cache. Fills pass the stamp taken before the store read
// and are dropped if Invalidate ran in between.
type PostCache interface {
	GetPost(ctx context.Context, id string) (*models.Post, bool)
	PostStamp(ctx context.Context, id string) (cache.Stamp, bool)
	SetPost(ctx context.Context, p *models.Post, stamp cache.Stamp)
	GetList(ctx context.Context) ([]models.Post, bool)
	ListStamp(ctx context.Context) (cache.Stamp, bool)
	SetList(ctx context.Context, posts []models.Post, stamp cache.Stamp)
	Invalidate(ctx context.Context, id string)
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event)
}

// Caller is the authenticated user a request acts for.
type Caller struct {
	ID     bson.ObjectID
	Name   string
	Avatar string
}
