package cache

import (
	"context"

	"workforce-notification-service/internal/models"
)

// HoldInteraction parks an interaction whose notification record could not be
// found, so the recipient's action survives until the record catches up.
// Entries expire with the holding namespace's TTL and are never authoritative.
func (c *Cache) HoldInteraction(ctx context.Context, in models.Interaction) error {
	return c.Set(ctx, NamespaceInteractionHolding, in.NotificationID+":"+in.UserPsID, in)
}

// HeldInteraction looks up a parked interaction for the pair.
func (c *Cache) HeldInteraction(ctx context.Context, notificationID, userPsID string) (*models.Interaction, error) {
	var in models.Interaction
	if err := c.Get(ctx, NamespaceInteractionHolding, notificationID+":"+userPsID, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// branchValidator is the slice of the location store the cache decorates.
type branchValidator interface {
	MissingBranchIDs(ctx context.Context, branchIDs []string) ([]string, error)
}

// LocationCache memoizes per-branch existence checks. Only positive results
// are cached; an unknown branch is always re-checked against the store.
type LocationCache struct {
	next  branchValidator
	cache *Cache
}

// NewLocationCache wraps a location store with the branch-validation
// namespace.
func NewLocationCache(next branchValidator, cache *Cache) *LocationCache {
	return &LocationCache{next: next, cache: cache}
}

// MissingBranchIDs returns the subset of branchIDs that do not exist.
func (lc *LocationCache) MissingBranchIDs(ctx context.Context, branchIDs []string) ([]string, error) {
	unknown := make([]string, 0, len(branchIDs))
	for _, id := range branchIDs {
		var ok bool
		if err := lc.cache.Get(ctx, NamespaceBranchValidation, id, &ok); err == nil && ok {
			continue
		}
		unknown = append(unknown, id)
	}
	if len(unknown) == 0 {
		return nil, nil
	}

	missing, err := lc.next.MissingBranchIDs(ctx, unknown)
	if err != nil {
		return nil, err
	}

	missingSet := make(map[string]bool, len(missing))
	for _, id := range missing {
		missingSet[id] = true
	}
	for _, id := range unknown {
		if !missingSet[id] {
			// Best effort; a failed cache write just means a re-check later.
			_ = lc.cache.Set(ctx, NamespaceBranchValidation, id, true)
		}
	}
	return missing, nil
}
