package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
)

// New selects and constructs the configured storage backend. The choice is
// made once at process start; there is no per-call backend switching.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, error) {
	switch {
	case cfg.IsS3Storage():
		return NewS3(ctx, cfg, log)
	case cfg.IsAzureStorage():
		return NewAzureBlob(cfg, log)
	case cfg.IsLocalStorage():
		return NewLocal(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
