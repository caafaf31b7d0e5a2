package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"workforce-notification-service/internal/models"
)

// GetInteraction returns the interaction row for the pair, or ErrNotFound.
// At most one row exists per (notificationId, userPsId).
func (s *Store) GetInteraction(ctx context.Context, notificationID, userPsID string) (*models.Interaction, error) {
	var in models.Interaction
	err := s.db.Collection(collInteractions).
		FindOne(ctx, bson.M{"notificationId": notificationID, "userPsId": userPsID}).
		Decode(&in)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get interaction for %s/%s: %w", notificationID, userPsID, err)
	}
	return &in, nil
}

// DeleteInteraction removes the interaction row for the pair. Deleting a
// missing row is not an error; the replace flow treats it as already gone.
func (s *Store) DeleteInteraction(ctx context.Context, notificationID, userPsID string) error {
	_, err := s.db.Collection(collInteractions).
		DeleteOne(ctx, bson.M{"notificationId": notificationID, "userPsId": userPsID})
	if err != nil {
		return fmt.Errorf("failed to delete interaction for %s/%s: %w", notificationID, userPsID, err)
	}
	return nil
}

// InsertInteraction stores a new interaction row.
func (s *Store) InsertInteraction(ctx context.Context, in models.Interaction) error {
	if _, err := s.db.Collection(collInteractions).InsertOne(ctx, in); err != nil {
		return fmt.Errorf("failed to insert interaction %s: %w", in.InteractionID, err)
	}
	return nil
}

// GetInteractionsByNotificationIDs returns the user's interactions for the
// given notification ids.
func (s *Store) GetInteractionsByNotificationIDs(ctx context.Context, notificationIDs []string, userPsID string) ([]models.Interaction, error) {
	cursor, err := s.db.Collection(collInteractions).Find(ctx, bson.M{
		"notificationId": bson.M{"$in": notificationIDs},
		"userPsId":       userPsID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find interactions for %s: %w", userPsID, err)
	}
	defer cursor.Close(ctx)

	var results []models.Interaction
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode interactions: %w", err)
	}
	return results, nil
}
