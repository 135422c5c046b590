package storage

import (
	"context"
	"fmt"

	"Spitbox/config"
)

// NewBackendFromConfig creates the Backend selected by cfg.StorageBackend.
func NewBackendFromConfig(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal:
		return NewLocalBackend(cfg.UploadDir)
	case config.StorageMinio:
		return NewMinioBackend(ctx, cfg)
	case config.StorageS3:
		return NewS3Backend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
