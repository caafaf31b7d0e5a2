package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	collNotifications = "notifications"
	collInteractions  = "notification_interactions"
	collEmployees     = "employees"
	collBranches      = "branches"
	collUserQueue     = "user_notification_queue"
	collPrerequisites = "onboarding_prerequisites"
)

// Store wraps the Mongo database holding the portal's document collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials Mongo and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
