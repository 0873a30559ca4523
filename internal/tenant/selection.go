package tenant

import (
	"sync"
	"time"
)

type selectionEntry struct {
	selection Selection
	expiresAt time.Time
}

// SelectionStore keeps the active garage per session with an expiry policy.
// Selection is keyed by session id rather than held process-global, so
// concurrent sessions cannot overwrite each other's choice.
type SelectionStore struct {
	mu       sync.Mutex
	registry *Registry
	ttl      time.Duration
	entries  map[string]selectionEntry
	now      func() time.Time
}

func NewSelectionStore(registry *Registry, ttl time.Duration) *SelectionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SelectionStore{
		registry: registry,
		ttl:      ttl,
		entries:  map[string]selectionEntry{},
		now:      time.Now,
	}
}

// Set validates the selection against the registry and binds it to the
// session, refreshing the expiry window.
func (s *SelectionStore) Set(sessionID string, selection Selection) (Selection, error) {
	resolved, err := s.registry.Resolve(selection)
	if err != nil {
		return Selection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = selectionEntry{
		selection: resolved,
		expiresAt: s.now().Add(s.ttl),
	}
	return resolved, nil
}

// Active returns the session's current selection, or ErrNoTenantSelected when
// none was set or the previous selection expired.
func (s *SelectionStore) Active(sessionID string) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return Selection{}, ErrNoTenantSelected
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return Selection{}, ErrNoTenantSelected
	}
	return entry.selection, nil
}

func (s *SelectionStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
}
