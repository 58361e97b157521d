package cache

import (
	"context"

	"github.com/matzehuels/wayfinder/pkg/config"
	"github.com/matzehuels/wayfinder/pkg/errors"
)

// Open creates the backend selected by cfg. The file backend uses cfg.Dir,
// or defaultDir when that is empty.
func Open(ctx context.Context, cfg config.CacheConfig, defaultDir string) (Cache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return NewNullCache(), nil
	case config.CacheRedis:
		return NewRedisCache(ctx, cfg.RedisAddr)
	case config.CacheFile, "":
		dir := cfg.Dir
		if dir == "" {
			dir = defaultDir
		}
		return NewFileCache(dir)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
}
