package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"TicketPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pollerTiers = []models.TierConfig{
	{Name: "Bronze", ExternalID: "B", PriceLabel: "₹100", NominalCapacity: 100},
	{Name: "Silver", ExternalID: "S", PriceLabel: "₹200", NominalCapacity: 50},
	{Name: "Gold", ExternalID: "G", PriceLabel: "₹300", NominalCapacity: 20},
}

var fixedNow = time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

func newTestPoller(f fetcherFunc, store *memoryStore, m *recordingMetrics, opts ...PollerOption) *Poller {
	opts = append([]PollerOption{
		WithPublishers(store),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	if m == nil {
		return NewPoller(pollerTiers, f, nil, opts...)
	}
	return NewPoller(pollerTiers, f, m, opts...)
}

func staticFetcher(recs ...models.AvailabilityRecord) fetcherFunc {
	return func(context.Context, []models.TierConfig) ([]models.AvailabilityRecord, error) {
		return recs, nil
	}
}

func TestPollerCycle_BuildsSnapshot(t *testing.T) {
	store := &memoryStore{}
	m := newRecordingMetrics()
	p := newTestPoller(staticFetcher(
		models.AvailabilityRecord{TierName: "Bronze", ExternalID: "B", Remaining: 40},
		models.AvailabilityRecord{TierName: "Silver", ExternalID: "S", UpstreamError: models.ErrorFetchFailed},
		models.AvailabilityRecord{TierName: "Gold", ExternalID: "G", Remaining: 5},
	), store, m)

	state, snap := p.Cycle(context.Background(), map[string]models.ReconciledTier{})
	require.NotNil(t, snap)

	assert.Equal(t, uint64(1), snap.Sequence)
	assert.Equal(t, fixedNow, snap.GeneratedAt)
	assert.Empty(t, snap.Error)
	require.Len(t, snap.Tiers, 3)

	bronze, silver, gold := snap.Tiers[0], snap.Tiers[1], snap.Tiers[2]
	assert.Equal(t, models.TierView{
		Name: "Bronze", ExternalID: "B", PriceLabel: "₹100", Observed: true,
		PinnedCapacity: 100, Remaining: 40, Booked: 60, PercentSold: 60, Status: models.TierAvailable,
	}, bronze)
	assert.Equal(t, models.TierView{
		Name: "Silver", ExternalID: "S", PriceLabel: "₹200",
		Error: models.ErrorFetchFailed, Status: models.TierUnavailable,
	}, silver)
	assert.Equal(t, models.TierCritical, gold.Status)

	assert.Equal(t, models.Totals{Capacity: 120, Booked: 75, Remaining: 45, PercentSold: 62.5}, snap.Totals)
	assert.Len(t, state, 2)
	assert.NotContains(t, state, "S")

	assert.Same(t, snap, store.latest)
	assert.Equal(t, 1, m.cycleCount("ok"))
	assert.Equal(t, 60.0, m.tiers["Bronze"])
}

func TestPollerCycle_StaleTierKeepsLastKnown(t *testing.T) {
	store := &memoryStore{}
	var fail atomic.Bool
	p := newTestPoller(func(context.Context, []models.TierConfig) ([]models.AvailabilityRecord, error) {
		if fail.Load() {
			return []models.AvailabilityRecord{
				{TierName: "Bronze", ExternalID: "B", UpstreamError: models.ErrorNoData},
				{TierName: "Silver", ExternalID: "S", Remaining: 20},
				{TierName: "Gold", ExternalID: "G", SoldOut: true},
			}, nil
		}
		return []models.AvailabilityRecord{
			{TierName: "Bronze", ExternalID: "B", Remaining: 75},
			{TierName: "Silver", ExternalID: "S", Remaining: 50},
			{TierName: "Gold", ExternalID: "G", Remaining: 20},
		}, nil
	}, store, nil)

	state, _ := p.Cycle(context.Background(), map[string]models.ReconciledTier{})
	fail.Store(true)
	_, snap := p.Cycle(context.Background(), state)

	bronze := snap.Tiers[0]
	assert.True(t, bronze.Observed)
	assert.True(t, bronze.Stale)
	assert.Equal(t, models.ErrorNoData, bronze.Error)
	assert.Equal(t, 25, bronze.Booked)

	assert.Equal(t, models.TierLimited, snap.Tiers[1].Status)
	assert.Equal(t, models.TierSoldOut, snap.Tiers[2].Status)
	assert.Equal(t, 100.0, snap.Tiers[2].PercentSold)
	assert.Equal(t, uint64(2), snap.Sequence)
}

func TestPollerCycle_TotalFailureRetainsState(t *testing.T) {
	store := &memoryStore{}
	m := newRecordingMetrics()
	var fail atomic.Bool
	p := newTestPoller(func(context.Context, []models.TierConfig) ([]models.AvailabilityRecord, error) {
		if fail.Load() {
			return nil, ErrNoTiers
		}
		return []models.AvailabilityRecord{{TierName: "Bronze", ExternalID: "B", Remaining: 10}}, nil
	}, store, m)

	state, _ := p.Cycle(context.Background(), map[string]models.ReconciledTier{})
	fail.Store(true)
	next, snap := p.Cycle(context.Background(), state)

	assert.Equal(t, state, next)
	assert.Equal(t, TotalFailureMessage, snap.Error)
	assert.True(t, snap.Tiers[0].Observed)
	assert.True(t, snap.Tiers[0].Stale)
	assert.Equal(t, 90, snap.Tiers[0].Booked)
	assert.Equal(t, models.TierUnavailable, snap.Tiers[1].Status)
	assert.Equal(t, 1, m.cycleCount("total_failure"))
	assert.Equal(t, 2, store.count())
}

func TestPollerCycle_PublisherFailureDoesNotStopCycle(t *testing.T) {
	broken := &memoryStore{err: errors.New("redis down")}
	healthy := &memoryStore{}
	m := newRecordingMetrics()
	p := NewPoller(pollerTiers, staticFetcher(models.AvailabilityRecord{TierName: "Bronze", ExternalID: "B", Remaining: 1}), m,
		WithPublishers(broken, healthy))

	state, snap := p.Cycle(context.Background(), nil)
	require.NotNil(t, snap)
	assert.Len(t, state, 1)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, m.errors["publish"])
}

func TestPollerCycle_CancelledDiscardsResults(t *testing.T) {
	store := &memoryStore{}
	ctx, cancel := context.WithCancel(context.Background())
	p := newTestPoller(func(context.Context, []models.TierConfig) ([]models.AvailabilityRecord, error) {
		cancel()
		return []models.AvailabilityRecord{{TierName: "Bronze", ExternalID: "B", Remaining: 1}}, nil
	}, store, nil)

	prev := map[string]models.ReconciledTier{}
	next, snap := p.Cycle(ctx, prev)
	assert.Nil(t, snap)
	assert.Empty(t, next)
	assert.Equal(t, 0, store.count())
}

func TestPollerRun_NoOverlapAndRefresh(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
		calls    atomic.Int32
	)
	fetch := func(context.Context, []models.TierConfig) ([]models.AvailabilityRecord, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxSeen {
			maxSeen = inFlight
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		calls.Add(1)
		return nil, nil
	}

	store := &memoryStore{}
	p := newTestPoller(fetch, store, nil, WithInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond, "first cycle runs immediately")

	for i := 0; i < 5; i++ {
		p.Refresh()
	}
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.LessOrEqual(t, calls.Load(), int32(3), "queued refreshes coalesce")
	mu.Lock()
	assert.Equal(t, 1, maxSeen)
	mu.Unlock()
}

func TestPollerRun_Ticks(t *testing.T) {
	var calls atomic.Int32
	p := newTestPoller(func(context.Context, []models.TierConfig) ([]models.AvailabilityRecord, error) {
		calls.Add(1)
		return nil, nil
	}, &memoryStore{}, nil, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestNewPoller_CopiesTiers(t *testing.T) {
	tiers := []models.TierConfig{{Name: "A", ExternalID: "A", NominalCapacity: 1}}
	p := NewPoller(tiers, staticFetcher(), nil)
	tiers[0].Name = "changed"
	assert.Equal(t, "A", p.tiers[0].Name)
}
