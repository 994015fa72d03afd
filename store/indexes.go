package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the registration engine relies on. The
// partial unique index on (eventId, leader) closes the race window the
// application-level duplicate check leaves open: two concurrent team
// creations for the same leader cannot both commit.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	_, err := db.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("teams").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "leader", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"leader": bson.M{"$type": "objectId"}},
			),
		},
		{
			Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "members.userId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "isRegistered", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "college", Value: 1}, {Key: "isVerified", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	// Registrant batches mean (eventId, registrantId) is legitimately
	// non-unique; the index only serves the listing queries.
	_, err = db.Collection("eventregistrations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "registrantId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "collegeName", Value: 1}, {Key: "isActive", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "teamId", Value: 1}},
		},
	})
	return err
}
