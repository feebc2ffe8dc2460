package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
)

func TestFlowStoreCreateAndGet(t *testing.T) {
	s := NewFlowStore(time.Minute)
	d := s.Create(10, 7)
	require.NotEmpty(t, d.ID)

	got, err := s.Get(d.ID, 7)
	require.NoError(t, err)
	assert.Same(t, d, got)
}

func TestFlowStoreUnknownDraft(t *testing.T) {
	s := NewFlowStore(time.Minute)
	_, err := s.Get("nope", 7)
	assert.True(t, domain.Is(err, domain.KindNotFound))
}

func TestFlowStoreForeignUser(t *testing.T) {
	s := NewFlowStore(time.Minute)
	d := s.Create(10, 7)

	_, err := s.Get(d.ID, 8)
	assert.True(t, domain.Is(err, domain.KindForbidden))
}

func TestFlowStoreRemove(t *testing.T) {
	s := NewFlowStore(time.Minute)
	d := s.Create(10, 7)
	s.Remove(d.ID)

	_, err := s.Get(d.ID, 7)
	assert.True(t, domain.Is(err, domain.KindNotFound))
}

func TestFlowStoreSweepsIdleDrafts(t *testing.T) {
	s := NewFlowStore(time.Minute)
	stale := s.Create(10, 7)
	stale.mu.Lock()
	stale.touchedAt = time.Now().Add(-2 * time.Minute)
	stale.mu.Unlock()

	// Creating another draft runs the sweep.
	fresh := s.Create(10, 7)

	_, err := s.Get(stale.ID, 7)
	assert.True(t, domain.Is(err, domain.KindNotFound))
	_, err = s.Get(fresh.ID, 7)
	assert.NoError(t, err)
}
