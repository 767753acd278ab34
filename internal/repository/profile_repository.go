package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ProfileRepository struct {
	Col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database, name string) *ProfileRepository {
	return &ProfileRepository{Col: db.Collection(name)}
}

func (r *ProfileRepository) ExistsForUser(ctx context.Context, userID bson.ObjectID) (bool, error) {
	n, err := r.Col.CountDocuments(ctx, bson.M{"user": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
