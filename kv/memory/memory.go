// Package memory is an in-process kv.Store.
package memory

import (
	"context"
	"sync"

	"xdao.co/teamchain/kv"
)

// Store keeps values in a map guarded by a mutex.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Update stages writes and applies them under the lock only if fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx kv.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &tx{base: s.data, writes: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.writes {
		if v == nil {
			delete(s.data, k)
			continue
		}
		s.data[k] = v
	}
	return nil
}

func (s *Store) Close() error { return nil }

type tx struct {
	base   map[string][]byte
	writes map[string][]byte // nil value marks a delete
}

func (t *tx) Get(key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		if v == nil {
			return nil, kv.ErrNotFound
		}
		return append([]byte(nil), v...), nil
	}
	v, ok := t.base[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (t *tx) Set(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	t.writes[key] = append([]byte{}, value...)
	return nil
}

func (t *tx) Delete(key string) error {
	t.writes[key] = nil
	return nil
}
