package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
)

// MemoryStore keeps the shopping list in process memory. Items are held in
// insertion order with a name index so upserts update in place.
type MemoryStore struct {
	mu    sync.RWMutex
	items []model.Item
	index map[string]int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// Upsert appends a new item or merges the amount of an existing one.
// The returned bool reports whether the item was newly created.
func (s *MemoryStore) Upsert(_ context.Context, item model.Item, mode model.UpsertMode) (model.Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[item.Name]; ok {
		amount, err := mode.Merge(s.items[i].Amount, item.Amount)
		if err != nil {
			return model.Item{}, false, fmt.Errorf("upsert %q: %w", item.Name, err)
		}
		s.items[i].Amount = amount
		return s.items[i], false, nil
	}

	s.index[item.Name] = len(s.items)
	s.items = append(s.items, item)
	return item, true, nil
}

// Get returns the item with the given name.
func (s *MemoryStore) Get(_ context.Context, name string) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return model.Item{}, fmt.Errorf("get %q: %w", name, model.ErrNotFound)
	}
	return s.items[i], nil
}

// Update replaces the amount of an existing item without moving it.
func (s *MemoryStore) Update(_ context.Context, item model.Item) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[item.Name]
	if !ok {
		return model.Item{}, fmt.Errorf("update %q: %w", item.Name, model.ErrNotFound)
	}
	s.items[i].Amount = item.Amount
	return s.items[i], nil
}

// Delete removes the item with the given name.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("delete %q: %w", name, model.ErrNotFound)
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Name] = j
	}
	return nil
}

// Clear removes every item.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[string]int)
	return nil
}

// List returns up to limit items starting at offset, in insertion order.
func (s *MemoryStore) List(_ context.Context, offset, limit int) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.Window(s.items, offset, limit), nil
}
