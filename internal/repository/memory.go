package repository

import (
	"context"
	"sync"
)

// MemoryMirrorStore keeps mirror entries in process memory.
type MemoryMirrorStore struct {
	entries sync.Map
}

func NewMemoryMirrorStore() *MemoryMirrorStore {
	return &MemoryMirrorStore{}
}

func (s *MemoryMirrorStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := s.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	data := val.([]byte)
	return append([]byte(nil), data...), true, nil
}

func (s *MemoryMirrorStore) Store(ctx context.Context, key string, value []byte) error {
	s.entries.Store(key, append([]byte(nil), value...))
	return nil
}

func (s *MemoryMirrorStore) Delete(ctx context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}
