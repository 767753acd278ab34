package bootstrap

import (
	"context"

	"devconnector/config"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// IndexSpecs lists every index the service relies on, keyed by collection.
func IndexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		config.CollectionPosts: {
			{
				Keys:    bson.D{{Key: "date", Value: -1}},
				Options: options.Index().SetName("date_desc"),
			},
			{
				Keys:    bson.D{{Key: "user", Value: 1}},
				Options: options.Index().SetName("user"),
			},
		},
		config.CollectionUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_email"),
			},
		},
		config.CollectionProfiles: {
			{
				Keys:    bson.D{{Key: "user", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_user"),
			},
		},
	}
}

// EnsureIndexes creates the indexes from IndexSpecs. Existing indexes with the same
// definition are left untouched by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range IndexSpecs() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
