package repository

import (
	"context"
	"fmt"

	"devconnector/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PostRepository stores posts with their likes and comments embedded. Array mutations
// are single guarded updates, so concurrent likes on one post never lose writes.
type PostRepository struct {
	Col *mongo.Collection
}

func NewPostRepository(db *mongo.Database, name string) *PostRepository {
	return &PostRepository{Col: db.Collection(name)}
}

// List returns every post, newest first.
func (r *PostRepository) List(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.Col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	p.Normalize()
	return &p, nil
}

func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	p.Normalize()
	if _, err := r.Col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// DeleteOwned removes the post only if owner wrote it. It reports ErrNotFound when
// nothing matched.
func (r *PostRepository) DeleteOwned(ctx context.Context, id, owner bson.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id, "user": owner})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushLike prepends like unless its user already liked the post.
func (r *PostRepository) PushLike(ctx context.Context, postID bson.ObjectID, like models.Like) (*models.Post, error) {
	return r.findOneAndUpdate(ctx, pushLikeFilter(postID, like.UserID), prependUpdate("likes", like))
}

// PullLike removes the like held by userID. The post holds at most one per user.
func (r *PostRepository) PullLike(ctx context.Context, postID, userID bson.ObjectID) (*models.Post, error) {
	filter := bson.M{"_id": postID, "likes.user": userID}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *PostRepository) PushComment(ctx context.Context, postID bson.ObjectID, c models.Comment) (*models.Post, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": postID}, prependUpdate("comments", c))
}

func (r *PostRepository) PullComment(ctx context.Context, postID, commentID bson.ObjectID) (*models.Post, error) {
	filter := bson.M{"_id": postID, "comments._id": commentID}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *PostRepository) findOneAndUpdate(ctx context.Context, filter, update any) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Post
	if err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	p.Normalize()
	return &p, nil
}

func pushLikeFilter(postID, userID bson.ObjectID) bson.M {
	return bson.M{"_id": postID, "likes.user": bson.M{"$ne": userID}}
}

// prependUpdate pushes item to the front of the named array.
func prependUpdate(field string, item any) bson.M {
	return bson.M{"$push": bson.M{field: bson.M{
		"$each":     bson.A{item},
		"$position": 0,
	}}}
}
