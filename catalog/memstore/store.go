// Package memstore is an in-memory catalog variant for tests and ephemeral
// runs. Blank ids are minted as UUIDs; explicit ids are honored and must be
// unique within the store.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shozoko/bookshop/catalog"
)

var _ catalog.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []catalog.Item
	feed  *catalog.Feed
}

func New() *Store {
	s := &Store{feed: catalog.NewFeed()}
	s.feed.Publish(nil)
	return s
}

// Seed inserts items without minting ids, for test fixtures.
func Seed(items ...catalog.Item) *Store {
	s := New()
	for _, it := range items {
		s.items = append(s.items, it.Normalized())
	}
	s.feed.Publish(s.snapshot())
	return s
}

func (s *Store) Observe(ctx context.Context) <-chan []catalog.Item {
	return s.feed.Subscribe(ctx)
}

func (s *Store) GetByID(_ context.Context, id string) (*catalog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			it := s.items[i]
			return &it, nil
		}
	}
	return nil, nil
}

func (s *Store) Insert(_ context.Context, item catalog.Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	} else {
		for i := range s.items {
			if s.items[i].ID == item.ID {
				return "", &catalog.PersistenceError{Op: "insert", Err: catalog.ErrConflict}
			}
		}
	}
	s.items = append(s.items, item.Normalized())
	s.feed.Publish(s.snapshot())
	return item.ID, nil
}

func (s *Store) Update(_ context.Context, item catalog.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item.Normalized()
			s.feed.Publish(s.snapshot())
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.feed.Publish(s.snapshot())
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) snapshot() []catalog.Item {
	out := make([]catalog.Item, len(s.items))
	copy(out, s.items)
	return out
}
