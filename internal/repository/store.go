package repository

import (
	"context"
	"fmt"
	"io"

	"schedly/internal/config"
	"schedly/internal/domain"

	"github.com/rs/zerolog"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser = closerFunc(func() error { return nil })

// NewMirrorStore opens the backend selected by cfg.Cache. It returns a nil
// store when the cache is disabled. A Redis backend that cannot be reached
// at startup degrades to memory.
func NewMirrorStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.MirrorStore, io.Closer, error) {
	if !cfg.Cache.Enabled {
		return nil, noopCloser, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory, "":
		return NewMemoryMirrorStore(), noopCloser, nil
	case config.CacheBackendSQLite:
		store, err := NewSQLiteMirrorStore(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.CacheBackendRedis:
		client := NewRedisClient(cfg.Redis)
		redisStore := NewRedisMirrorStore(client, cfg.Cache.TTL)
		if err := Ping(ctx, client); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, mirror starts on memory")
		}
		store := NewFailoverMirrorStore(redisStore, NewMemoryMirrorStore(), logger)
		return store, closerFunc(func() error { return Close(client) }), nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
