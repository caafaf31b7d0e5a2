package notification

import (
	"context"
	"fmt"
)

// resolvedRecipients partitions a recipient list into users with registered
// device endpoints and users without any.
type resolvedRecipients struct {
	// tokens maps userPsId to registered device tokens, list order preserved.
	tokens map[string][]string
	// withoutTokens lists recipients with no usable endpoint, including ps
	// ids with no employee record at all.
	withoutTokens []string
}

// resolveDeviceTokens looks up device endpoints for the recipient list,
// batching user-store queries to bound concurrent load. Recipients without
// endpoints are logged but do not fail the operation; an entirely empty
// resolved set does, since there is nothing to attempt.
func (s *Service) resolveDeviceTokens(ctx context.Context, txID string, userPsIDs []string) (*resolvedRecipients, error) {
	res := &resolvedRecipients{tokens: make(map[string][]string)}

	batchSize := s.deviceTokenBatchSize
	for start := 0; start < len(userPsIDs); start += batchSize {
		end := start + batchSize
		if end > len(userPsIDs) {
			end = len(userPsIDs)
		}
		employees, err := s.employees.FindEmployeesByPsIDs(ctx, userPsIDs[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve device tokens: %w", err)
		}
		for _, emp := range employees {
			if len(emp.DeviceTokens) > 0 {
				res.tokens[emp.PsID] = emp.DeviceTokens
			}
		}
	}

	for _, psID := range userPsIDs {
		if _, ok := res.tokens[psID]; !ok {
			res.withoutTokens = append(res.withoutTokens, psID)
		}
	}
	if len(res.withoutTokens) > 0 {
		s.logger.Warnf("[%s] %d of %d recipients have no device tokens: %v", txID, len(res.withoutTokens), len(userPsIDs), res.withoutTokens)
	}

	if len(res.tokens) == 0 {
		return nil, ErrNoDeviceTokens
	}
	return res, nil
}
