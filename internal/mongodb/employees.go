package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"workforce-notification-service/internal/models"
)

// FindEmployeesByPsIDs returns employee records for the given ps ids. Callers
// batch the id list; this issues a single $in query per batch.
func (s *Store) FindEmployeesByPsIDs(ctx context.Context, psIDs []string) ([]models.Employee, error) {
	cursor, err := s.db.Collection(collEmployees).Find(ctx, bson.M{"psId": bson.M{"$in": psIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find employees: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Employee
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	return results, nil
}

// AddTopAlert appends the notification id to the employee's top-alerts list.
// $addToSet keeps the list duplicate-free under concurrent sends.
func (s *Store) AddTopAlert(ctx context.Context, userPsID, notificationID string) error {
	_, err := s.db.Collection(collEmployees).UpdateOne(ctx,
		bson.M{"psId": userPsID},
		bson.M{
			"$addToSet": bson.M{"topAlerts": notificationID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add top alert for %s: %w", userPsID, err)
	}
	return nil
}

// RemoveTopAlert pulls the notification id from the employee's top-alerts
// list. Atomic, so concurrent Read interactions cannot race a read-then-write.
func (s *Store) RemoveTopAlert(ctx context.Context, userPsID, notificationID string) error {
	_, err := s.db.Collection(collEmployees).UpdateOne(ctx,
		bson.M{"psId": userPsID},
		bson.M{
			"$pull": bson.M{"topAlerts": notificationID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove top alert for %s: %w", userPsID, err)
	}
	return nil
}
