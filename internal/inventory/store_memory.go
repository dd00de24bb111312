package inventory

import (
	"context"
	"sync"
)

type MemStore struct {
	mu    sync.RWMutex
	recs  []Record
	saves int
}

func NewMemStore(seed ...Product) *MemStore {
	s := &MemStore{}
	for _, p := range seed {
		s.recs = append(s.recs, p.Record())
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.recs))
	for _, r := range s.recs {
		p, err := FromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *MemStore) Save(ctx context.Context, products []Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recs = make([]Record, 0, len(products))
	for _, p := range products {
		s.recs = append(s.recs, p.Record())
	}
	s.saves++
	return nil
}

// Records returns what was last saved.
func (s *MemStore) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.recs...)
}

// Saves counts successful Save calls.
func (s *MemStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
