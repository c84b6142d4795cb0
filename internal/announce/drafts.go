package announce

import (
	"context"
	"sync"
	"time"
)

type draftEntry struct {
	wizard   *Wizard
	lastUsed time.Time
}

// DraftStore keeps one wizard per visitor. Drafts left untouched for too
// long are dropped by the janitor together with their photos.
type DraftStore struct {
	mu      sync.Mutex
	newFn   func() *Wizard
	wizards map[string]*draftEntry
	now     func() time.Time
}

func NewDraftStore(newFn func() *Wizard) *DraftStore {
	return &DraftStore{newFn: newFn, wizards: make(map[string]*draftEntry), now: time.Now}
}

// Get returns the visitor's wizard, starting a fresh one if needed.
func (s *DraftStore) Get(visitor string) *Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.wizards[visitor]
	if !ok {
		e = &draftEntry{wizard: s.newFn()}
		s.wizards[visitor] = e
	}
	e.lastUsed = s.now()
	return e.wizard
}

// Reset replaces the visitor's wizard with a fresh one.
func (s *DraftStore) Reset(visitor string) *Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.newFn()
	s.wizards[visitor] = &draftEntry{wizard: w, lastUsed: s.now()}
	return w
}

func (s *DraftStore) Discard(visitor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, visitor)
}

func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wizards)
}

// EvictIdle drops drafts untouched for longer than idle and returns how many went.
func (s *DraftStore) EvictIdle(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for visitor, e := range s.wizards {
		if e.lastUsed.Before(cutoff) {
			delete(s.wizards, visitor)
			n++
		}
	}
	return n
}

// StartJanitor evicts idle drafts every idle interval until ctx is done.
func (s *DraftStore) StartJanitor(ctx context.Context, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(idle)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EvictIdle(idle)
			}
		}
	}()
}
