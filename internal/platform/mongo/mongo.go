// Package mongo provides the MongoDB connection used by the document backend.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the collection that mirrors the relational users table.
const UsersCollection = "users"

// Connect establishes a connection to MongoDB and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	slog.Info("MongoDB connection successful", "uri_host", hostOf(uri))
	return client, nil
}

// Users returns the users collection of the given database.
func Users(client *mongo.Client, dbName string) *mongo.Collection {
	return client.Database(dbName).Collection(UsersCollection)
}

// hostOf strips credentials so the URI can be logged.
func hostOf(uri string) string {
	opts := options.Client().ApplyURI(uri)
	if len(opts.Hosts) == 0 {
		return ""
	}
	return opts.Hosts[0]
}
