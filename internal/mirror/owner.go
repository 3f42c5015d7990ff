package mirror

import (
	"context"

	"schedly/internal/domain"

	"github.com/rs/zerolog"
)

// Owner records which user the mirrored collections belong to. An empty
// owner means no login has been seen yet.
type Owner struct {
	store  domain.MirrorStore
	key    string
	logger *zerolog.Logger
}

func NewOwner(store domain.MirrorStore, namespace string, logger *zerolog.Logger) *Owner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	key := "owner"
	if namespace != "" {
		key = namespace + ":owner"
	}
	return &Owner{store: store, key: key, logger: logger}
}

// Get returns the recorded user ID, or "" when unknown.
func (o *Owner) Get(ctx context.Context) string {
	raw, ok, err := o.store.Load(ctx, o.key)
	if err != nil {
		o.logger.Warn().Err(err).Str("key", o.key).Msg("mirror owner load failed")
		return ""
	}
	if !ok {
		return ""
	}
	return string(raw)
}

func (o *Owner) Set(ctx context.Context, userID string) {
	if err := o.store.Store(ctx, o.key, []byte(userID)); err != nil {
		o.logger.Warn().Err(err).Str("key", o.key).Msg("mirror owner store failed")
	}
}

func (o *Owner) Clear(ctx context.Context) {
	if err := o.store.Delete(ctx, o.key); err != nil {
		o.logger.Warn().Err(err).Str("key", o.key).Msg("mirror owner clear failed")
	}
}
