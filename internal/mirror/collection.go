// Package mirror keeps the last-known server state of each collection in a
// key-value store so reads and writes can continue while the API is down.
package mirror

import (
	"context"
	"encoding/json"

	"schedly/internal/domain"
	"schedly/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Record is the constraint on mirrored entities: a pointer to T that
// carries an ID.
type Record[T any] interface {
	*T
	models.Entity
}

// Collection stores one JSON array of T under key. Store errors are logged
// and read as an empty collection; they never reach callers.
type Collection[T any, P Record[T]] struct {
	store  domain.MirrorStore
	key    string
	logger *zerolog.Logger
}

func NewCollection[T any, P Record[T]](store domain.MirrorStore, namespace, name string, logger *zerolog.Logger) *Collection[T, P] {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	key := name
	if namespace != "" {
		key = namespace + ":" + name
	}
	return &Collection[T, P]{store: store, key: key, logger: logger}
}

// Key returns the store key of the collection.
func (c *Collection[T, P]) Key() string {
	return c.key
}

// All returns the cached collection, never nil.
func (c *Collection[T, P]) All(ctx context.Context) []P {
	raw, ok, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("mirror load failed")
		return []P{}
	}
	if !ok || len(raw) == 0 {
		return []P{}
	}

	var items []P
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("mirror entry is corrupt")
		return []P{}
	}
	out := items[:0]
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the cached entity with id, or nil.
func (c *Collection[T, P]) Find(ctx context.Context, id string) P {
	for _, item := range c.All(ctx) {
		if item.GetID() == id {
			return item
		}
	}
	return nil
}

// Replace overwrites the collection.
func (c *Collection[T, P]) Replace(ctx context.Context, items []P) {
	if items == nil {
		items = []P{}
	}
	c.write(ctx, items)
}

// Put upserts item by ID. Items without an ID are ignored.
func (c *Collection[T, P]) Put(ctx context.Context, item P) {
	if item == nil || item.GetID() == "" {
		return
	}
	c.write(ctx, upsert(c.All(ctx), item))
}

// Remove drops the entity with id.
func (c *Collection[T, P]) Remove(ctx context.Context, id string) {
	items := c.All(ctx)
	out := items[:0]
	for _, item := range items {
		if item.GetID() != id {
			out = append(out, item)
		}
	}
	c.write(ctx, out)
}

// SaveLocal records a save that could not reach the API. An entity without
// an ID gets a synthesized local-<uuid> ID. The stored copy is returned.
func (c *Collection[T, P]) SaveLocal(ctx context.Context, item P) P {
	if item == nil {
		return nil
	}
	saved := P(new(T))
	*saved = *item
	if saved.GetID() == "" {
		saved.SetID(models.LocalIDPrefix + uuid.NewString())
	}
	c.write(ctx, upsert(c.All(ctx), saved))
	return saved
}

// Clear drops the whole collection.
func (c *Collection[T, P]) Clear(ctx context.Context) {
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("mirror clear failed")
	}
}

func (c *Collection[T, P]) write(ctx context.Context, items []P) {
	raw, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("mirror encode failed")
		return
	}
	if err := c.store.Store(ctx, c.key, raw); err != nil {
		c.logger.Warn().Err(err).Str("key", c.key).Msg("mirror store failed")
	}
}

func upsert[P models.Entity](items []P, item P) []P {
	for i, existing := range items {
		if existing.GetID() == item.GetID() {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}
