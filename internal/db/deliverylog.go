package db

import (
	"context"
	"fmt"

	"workforce-notification-service/internal/models"
)

// InsertDeliveryLog appends one per-device send outcome. Rows are written
// once and never mutated.
func (d *DB) InsertDeliveryLog(ctx context.Context, e models.DeliveryLogEntry) error {
	query := `
        INSERT INTO delivery_logs (
            entry_id, notification_id, user_ps_id, device_token, status, error, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := d.Pool.Exec(ctx, query,
		e.EntryID, e.NotificationID, e.UserPsID, e.DeviceToken, e.Status, e.Error, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert delivery log entry: %w", err)
	}
	return nil
}

// GetDeliveryLogsByNotificationID returns all recorded device outcomes for a
// notification, newest first.
func (d *DB) GetDeliveryLogsByNotificationID(ctx context.Context, notificationID string) ([]models.DeliveryLogEntry, error) {
	rows, err := d.Pool.Query(ctx, `
        SELECT entry_id, notification_id, user_ps_id, device_token, status, error, created_at
        FROM delivery_logs
        WHERE notification_id = $1
        ORDER BY created_at DESC`, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery logs for notification %s: %w", notificationID, err)
	}
	defer rows.Close()

	var entries []models.DeliveryLogEntry
	for rows.Next() {
		var e models.DeliveryLogEntry
		if err := rows.Scan(&e.EntryID, &e.NotificationID, &e.UserPsID, &e.DeviceToken, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
