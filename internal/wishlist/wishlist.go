package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// DefaultKey is the storage key of a wishlist that belongs to nobody in particular.
const DefaultKey = "wishlist"

// ErrNotFound is returned by a Backend when nothing is stored under a key.
var ErrNotFound = errors.New("wishlist: key not found")

// Backend stores one serialized wishlist per key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store is a set of book ids kept in insertion order. Every mutation writes
// the whole set through the backend before it becomes visible, so the
// in-memory set always equals what was last persisted.
type Store struct {
	mu      sync.Mutex
	key     string
	backend Backend
	ids     []string
}

// Open loads the set stored under key. Missing or unreadable data yields an empty set.
func Open(ctx context.Context, backend Backend, key string) (*Store, error) {
	s := &Store{key: key, backend: backend}

	raw, err := backend.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wishlist %q: %w", key, err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		slog.WarnContext(ctx, "discarding corrupt wishlist", "key", key, "error", err)
		return s, nil
	}
	for _, id := range ids {
		if id != "" && !slices.Contains(s.ids, id) {
			s.ids = append(s.ids, id)
		}
	}
	return s, nil
}

func (s *Store) Key() string { return s.key }

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, id)
}

// IDs returns a copy of the set in insertion order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Add inserts id; adding a present id changes nothing.
func (s *Store) Add(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.ids, id) {
		return nil
	}
	return s.commit(ctx, append(slices.Clone(s.ids), id))
}

// Remove deletes id; removing an absent id changes nothing.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.ids, id)
	if i < 0 {
		return nil
	}
	return s.commit(ctx, slices.Delete(slices.Clone(s.ids), i, i+1))
}

// Toggle flips membership of id and reports whether it is now present.
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.ids, id); i >= 0 {
		if err := s.commit(ctx, slices.Delete(slices.Clone(s.ids), i, i+1)); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.commit(ctx, append(slices.Clone(s.ids), id)); err != nil {
		return false, err
	}
	return true, nil
}

// commit persists next and only then swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []string) error {
	if next == nil {
		next = []string{}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save wishlist %q: %w", s.key, err)
	}
	s.ids = next
	return nil
}
