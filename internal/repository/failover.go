package repository

import (
	"context"
	"sync/atomic"
	"time"

	"schedly/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverMirrorStore uses primary until it fails, then serves from
// fallback. The primary is probed again once recoveryInterval has passed.
type FailoverMirrorStore struct {
	primary   domain.MirrorStore
	fallback  domain.MirrorStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverMirrorStore(primary, fallback domain.MirrorStore, logger *zerolog.Logger) *FailoverMirrorStore {
	return &FailoverMirrorStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverMirrorStore) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary mirror store failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(r.now().UnixNano())
}

// usePrimary reports whether the next call should go to the primary store.
func (r *FailoverMirrorStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(0, r.lastCheck.Load())
	if r.now().Sub(last) > recoveryInterval {
		r.lastCheck.Store(r.now().UnixNano())
		return true
	}
	return false
}

func (r *FailoverMirrorStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if r.usePrimary() {
		val, ok, err := r.primary.Load(ctx, key)
		if err == nil {
			if r.isDown.Swap(false) {
				r.logger.Info().Msg("Primary mirror store recovered")
			}
			return val, ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.Load(ctx, key)
}

func (r *FailoverMirrorStore) Store(ctx context.Context, key string, value []byte) error {
	if r.usePrimary() {
		err := r.primary.Store(ctx, key, value)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Store(ctx, key, value)
}

func (r *FailoverMirrorStore) Delete(ctx context.Context, key string) error {
	if r.usePrimary() {
		err := r.primary.Delete(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Delete(ctx, key)
}
