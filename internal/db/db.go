package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client is the process-wide MongoDB client: connected once at startup,
// reused for the process lifetime.
var Client *mongo.Client

// Connect initializes the MongoDB connection and verifies it with a ping.
func Connect(uri string) error {
	var err error
	Client, err = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the connection (call in main defer).
func Disconnect(ctx context.Context) error {
	return Client.Disconnect(ctx)
}
