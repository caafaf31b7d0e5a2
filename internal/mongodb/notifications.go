package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"workforce-notification-service/internal/models"
)

// ErrNotFound is returned when a document lookup matches nothing.
var ErrNotFound = errors.New("document not found")

// CreateNotification persists the logical notification record.
func (s *Store) CreateNotification(ctx context.Context, n models.Notification) error {
	if _, err := s.db.Collection(collNotifications).InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification %s: %w", n.NotificationID, err)
	}
	return nil
}

// GetNotificationByID fetches a notification by id. Expired notifications are
// still returned; only listings exclude them.
func (s *Store) GetNotificationByID(ctx context.Context, notificationID string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.Collection(collNotifications).
		FindOne(ctx, bson.M{"notificationId": notificationID}).
		Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification %s: %w", notificationID, err)
	}
	return &n, nil
}

// activeFilter excludes soft-deleted and expired documents. A notification
// is active when expiresAt is unset, null, or in the future.
func activeFilter(now time.Time) bson.M {
	return bson.M{
		"isDeleted": bson.M{"$ne": true},
		"$or": []bson.M{
			{"expiresAt": bson.M{"$exists": false}},
			{"expiresAt": nil},
			{"expiresAt": bson.M{"$gt": now}},
		},
	}
}

// FindNotifications runs the audience-list DB query: active, optionally
// matching a free-text search across id/title/body/creator name. The caller
// applies the visibility membership check on the returned set.
func (s *Store) FindNotifications(ctx context.Context, search string, opts models.QueryOptions) ([]models.Notification, error) {
	filter := activeFilter(time.Now())
	if search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		filter["$and"] = []bson.M{{
			"$or": []bson.M{
				{"notificationId": regex},
				{"title": regex},
				{"body": regex},
				{"createdBy": regex},
			},
		}}
	}

	findOpts := options.Find()
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	sortField := opts.SortField
	if sortField == "" {
		sortField = "createdAt"
	}
	sortOrder := opts.SortOrder
	if sortOrder == 0 {
		sortOrder = -1
	}
	findOpts.SetSort(bson.D{{Key: sortField, Value: sortOrder}})

	cursor, err := s.db.Collection(collNotifications).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Notification
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return results, nil
}

// FindUserNotifications returns a user's personal inbox ordered by priority
// weight (Highest first) then by the requested sort. Priority ordering uses
// an aggregation-computed sort field since priorities are stored as strings.
func (s *Store) FindUserNotifications(ctx context.Context, userPsID string, opts models.QueryOptions) ([]models.Notification, error) {
	sortField := opts.SortField
	if sortField == "" {
		sortField = "createdAt"
	}
	sortOrder := opts.SortOrder
	if sortOrder == 0 {
		sortOrder = -1
	}

	match := activeFilter(time.Now())
	match["userPsIds"] = userPsID

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{
			"priorityWeight": bson.M{"$switch": bson.M{
				"branches": []bson.M{
					{"case": bson.M{"$eq": []interface{}{"$priority", string(models.PriorityHighest)}}, "then": 4},
					{"case": bson.M{"$eq": []interface{}{"$priority", string(models.PriorityHigh)}}, "then": 3},
					{"case": bson.M{"$eq": []interface{}{"$priority", string(models.PriorityMedium)}}, "then": 2},
					{"case": bson.M{"$eq": []interface{}{"$priority", string(models.PriorityLow)}}, "then": 1},
				},
				"default": 0,
			}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "priorityWeight", Value: -1},
			{Key: sortField, Value: sortOrder},
		}}},
	}
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: opts.Skip}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: opts.Limit}})
	}

	cursor, err := s.db.Collection(collNotifications).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Notification
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode user notifications: %w", err)
	}
	return results, nil
}

// SoftDeleteNotification flags the record deleted without removing it.
func (s *Store) SoftDeleteNotification(ctx context.Context, notificationID string) error {
	res, err := s.db.Collection(collNotifications).UpdateOne(ctx,
		bson.M{"notificationId": notificationID},
		bson.M{"$set": bson.M{
			"isDeleted": true,
			"status":    models.NotificationStatusRemoved,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete notification %s: %w", notificationID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// HardDeleteNotification removes the record permanently.
func (s *Store) HardDeleteNotification(ctx context.Context, notificationID string) error {
	res, err := s.db.Collection(collNotifications).DeleteOne(ctx, bson.M{"notificationId": notificationID})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", notificationID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
