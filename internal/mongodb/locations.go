package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// MissingBranchIDs returns the subset of branchIDs with no branch record.
// An empty result means every id is valid.
func (s *Store) MissingBranchIDs(ctx context.Context, branchIDs []string) ([]string, error) {
	cursor, err := s.db.Collection(collBranches).Find(ctx, bson.M{"branchId": bson.M{"$in": branchIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find branches: %w", err)
	}
	defer cursor.Close(ctx)

	found := make(map[string]bool, len(branchIDs))
	for cursor.Next(ctx) {
		var b struct {
			BranchID string `bson:"branchId"`
		}
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode branch: %w", err)
		}
		found[b.BranchID] = true
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("branch cursor failed: %w", err)
	}

	var missing []string
	for _, id := range branchIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
