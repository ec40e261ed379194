package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/session"
)

var epoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func itineraryWith(names ...string) domain.Itinerary {
	it := domain.Itinerary{}
	for _, n := range names {
		it.Stops = append(it.Stops, domain.Stop{Name: n, Time: "09:00"})
	}
	it.Plan.Stops = it.Stops
	return it
}

func TestStore_CreateGet(t *testing.T) {
	s := session.NewStore(func() time.Time { return epoch })

	id := s.Create()
	snap, err := s.Get(id)

	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Zero(t, snap.Generation)
	assert.False(t, snap.Pending)
	assert.NotNil(t, snap.Itinerary.Timeline)
	assert.True(t, snap.Itinerary.Empty())
	assert.Equal(t, epoch, snap.UpdatedAt)
}

func TestStore_UnknownSession(t *testing.T) {
	s := session.NewStore(nil)
	id := uuid.New()

	_, err := s.Get(id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Begin(id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Reset(id), domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(id), domain.ErrNotFound)
	assert.ErrorIs(t, s.Commit(session.Ticket{ID: id}, itineraryWith("x")), domain.ErrNotFound)
}

func TestStore_BeginCommit(t *testing.T) {
	s := session.NewStore(nil)
	id := s.Create()

	ticket, err := s.Begin(id)
	require.NoError(t, err)
	pending, err := s.Get(id)
	require.NoError(t, err)
	require.NoError(t, s.Commit(ticket, itineraryWith("Park")))
	done, err := s.Get(id)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), ticket.Generation)
	assert.True(t, pending.Pending)
	assert.True(t, pending.Itinerary.Empty(), "nothing half-built is visible while a cycle runs")
	assert.False(t, done.Pending)
	assert.Len(t, done.Itinerary.Stops, 1)
}

func TestStore_BeginDiscardsPreviousItinerary(t *testing.T) {
	s := session.NewStore(nil)
	id := s.Create()
	first, err := s.Begin(id)
	require.NoError(t, err)
	require.NoError(t, s.Commit(first, itineraryWith("Park")))

	_, err = s.Begin(id)
	require.NoError(t, err)
	snap, err := s.Get(id)

	require.NoError(t, err)
	assert.True(t, snap.Itinerary.Empty())
}

func TestStore_StaleCommitIsRejected(t *testing.T) {
	s := session.NewStore(nil)
	id := s.Create()
	old, err := s.Begin(id)
	require.NoError(t, err)
	current, err := s.Begin(id)
	require.NoError(t, err)
	require.NoError(t, s.Commit(current, itineraryWith("Cafe")))

	err = s.Commit(old, itineraryWith("Park"))

	assert.ErrorIs(t, err, domain.ErrStale)
	snap, _ := s.Get(id)
	require.Len(t, snap.Itinerary.Stops, 1)
	assert.Equal(t, "Cafe", snap.Itinerary.Stops[0].Name)
}

func TestStore_ResetInvalidatesCycleInFlight(t *testing.T) {
	s := session.NewStore(nil)
	id := s.Create()
	ticket, err := s.Begin(id)
	require.NoError(t, err)

	require.NoError(t, s.Reset(id))
	err = s.Commit(ticket, itineraryWith("Park"))

	assert.ErrorIs(t, err, domain.ErrStale)
	snap, _ := s.Get(id)
	assert.True(t, snap.Itinerary.Empty())
	assert.False(t, snap.Pending)
}

func TestStore_Abort(t *testing.T) {
	s := session.NewStore(nil)
	id := s.Create()
	old, _ := s.Begin(id)
	current, _ := s.Begin(id)

	s.Abort(old)
	snap, _ := s.Get(id)
	assert.True(t, snap.Pending, "a stale abort is ignored")

	s.Abort(current)
	snap, _ = s.Get(id)
	assert.False(t, snap.Pending)
}

func TestStore_Delete(t *testing.T) {
	s := session.NewStore(nil)
	id := s.Create()

	require.NoError(t, s.Delete(id))

	_, err := s.Get(id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	now := epoch
	s := session.NewStore(func() time.Time { return now })
	idle := s.Create()
	busy := s.Create()
	_, err := s.Begin(busy)
	require.NoError(t, err)

	now = epoch.Add(30 * time.Minute)
	fresh := s.Create()

	removed := s.Sweep(epoch.Add(90*time.Minute), time.Hour)

	assert.Equal(t, 1, removed)
	_, err = s.Get(idle)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(busy)
	assert.NoError(t, err, "sessions with a cycle in flight are kept")
	_, err = s.Get(fresh)
	assert.NoError(t, err)
}

// TestStore_ConcurrentCycles checks that when many cycles race, only the
// latest generation can commit and the store never holds a stale result.
func TestStore_ConcurrentCycles(t *testing.T) {
	s := session.NewStore(nil)
	id := s.Create()

	const n = 50
	tickets := make([]session.Ticket, n)
	for i := range tickets {
		var err error
		tickets[i], err = s.Begin(id)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Commit(tickets[i], itineraryWith("stop"))
		}(i)
	}
	wg.Wait()

	for i, err := range errs[:n-1] {
		assert.ErrorIs(t, err, domain.ErrStale, "ticket %d", i)
	}
	assert.NoError(t, errs[n-1])
	snap, _ := s.Get(id)
	assert.Equal(t, tickets[n-1].Generation, snap.Generation)
	assert.False(t, snap.Pending)
}
