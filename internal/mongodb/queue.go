package mongodb

import (
	"context"
	"fmt"

	"workforce-notification-service/internal/models"
)

// CreateUserQueueEntry writes one per-recipient queue row for Dashboard and
// UserQueue placements.
func (s *Store) CreateUserQueueEntry(ctx context.Context, e models.UserQueueEntry) error {
	if _, err := s.db.Collection(collUserQueue).InsertOne(ctx, e); err != nil {
		return fmt.Errorf("failed to create user queue entry for %s: %w", e.UserPsID, err)
	}
	return nil
}

// CreatePrerequisite records an onboarding gating item via the prerequisite
// collection. Fire-and-forget relative to the send call's return value.
func (s *Store) CreatePrerequisite(ctx context.Context, p models.Prerequisite) error {
	if _, err := s.db.Collection(collPrerequisites).InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create prerequisite %s: %w", p.PrerequisiteID, err)
	}
	return nil
}
