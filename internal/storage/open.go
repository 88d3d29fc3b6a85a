package storage

import (
	"context"
	"fmt"

	"github.com/ikkim/storefront/config"
	"github.com/ikkim/storefront/internal/db"
	"github.com/ikkim/storefront/pkg/logger"
	appRedis "github.com/ikkim/storefront/pkg/redis"
)

// Open builds the backend selected by STORAGE_DRIVER. Shared connections
// (database, redis) are opened here and closed by their own packages.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	logger.Info("Opening local storage backend", map[string]interface{}{
		"driver": cfg.Storage.Driver,
	})

	switch cfg.Storage.Driver {
	case "memory":
		return NewMemoryBackend(), nil

	case "file":
		return NewFileBackend(cfg.Storage.Dir)

	case "redis":
		client, err := appRedis.Init(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client, cfg.Session.TTL), nil

	case "postgres", "mysql":
		if err := db.Initialize(&cfg.Database, cfg.Storage.Driver); err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			return nil, err
		}
		return NewSQLBackend(db.GetDB()), nil

	case "s3":
		client, err := NewS3Client(ctx, cfg.S3.Region, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey)
		if err != nil {
			return nil, err
		}
		return NewS3Backend(client, cfg.S3.Bucket, cfg.S3.Prefix), nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
