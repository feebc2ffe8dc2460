package draft

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
)

// FlowStore holds the active drafts of all diners, keyed by an opaque
// draft ID.  It replaces the source system's ambient singleton with an
// explicit session object: created at flow start, torn down on close
// or after sitting idle past the TTL.
type FlowStore struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
}

// NewFlowStore returns a store that expires idle drafts after ttl.  A
// non-positive ttl defaults to 30 minutes.
func NewFlowStore(ttl time.Duration) *FlowStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &FlowStore{drafts: make(map[string]*Draft), ttl: ttl}
}

// Create opens a new flow for the diner at the store and returns the
// draft with its defaults applied.
func (s *FlowStore) Create(storeID, userID uint64) *Draft {
	d := newDraft(uuid.NewString(), storeID, userID)
	s.mu.Lock()
	s.drafts[d.ID] = d
	s.sweepLocked()
	s.mu.Unlock()
	return d
}

// Get returns the diner's draft.  Drafts are private to the diner who
// opened them; a foreign user ID yields KindForbidden.
func (s *FlowStore) Get(id string, userID uint64) (*Draft, error) {
	s.mu.Lock()
	d, ok := s.drafts[id]
	s.mu.Unlock()
	if !ok {
		return nil, domain.E(domain.KindNotFound, "draft not found", nil)
	}
	if d.UserID != userID {
		return nil, domain.E(domain.KindForbidden, "draft belongs to another user", nil)
	}
	d.mu.Lock()
	d.touchedAt = time.Now()
	d.mu.Unlock()
	return d, nil
}

// Remove destroys a draft after the flow closes or completes.
func (s *FlowStore) Remove(id string) {
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
}

// sweepLocked drops drafts idle past the TTL.  Called opportunistically
// on Create so the store never needs its own goroutine.
func (s *FlowStore) sweepLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, d := range s.drafts {
		d.mu.Lock()
		stale := d.touchedAt.Before(cutoff)
		d.mu.Unlock()
		if stale {
			delete(s.drafts, id)
		}
	}
}
