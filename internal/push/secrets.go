package push

import (
	"context"
	"fmt"
	"os"
)

// SecretStore supplies the service-account credential material used to obtain
// the push-provider bearer token.
type SecretStore interface {
	ServiceAccountJSON(ctx context.Context) ([]byte, error)
}

// FileSecretStore reads the credential from disk on every call, matching the
// fetch-fresh-per-call behavior of the delivery path.
type FileSecretStore struct {
	Path string
}

func (f FileSecretStore) ServiceAccountJSON(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read push credentials: %w", err)
	}
	return data, nil
}
