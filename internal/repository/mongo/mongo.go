package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	chatsCollection = "chats"
)

// EnsureIndexes creates the unique emailId index and the owner listing index.
func EnsureIndexes(ctx context.Context, db *mongodriver.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "emailId", Value: 1}},
		Options: options.Index().SetName("uniq_email_id").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure users indexes: %w", err)
	}

	_, err = db.Collection(chatsCollection).Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
		Options: options.Index().SetName("user_updated_desc"),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure chats indexes: %w", err)
	}
	return nil
}

func ping(ctx context.Context, db *mongodriver.Database) error {
	return db.Client().Ping(ctx, readpref.Primary())
}

// MongoDB DateTime keeps milliseconds.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
