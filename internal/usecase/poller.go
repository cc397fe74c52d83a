package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"TicketPulse/internal/domain/models"
	drepo "TicketPulse/internal/domain/repository"
	applogger "TicketPulse/pkg/logger"
)

// TotalFailureMessage is the banner shown when a whole pass fails.
const TotalFailureMessage = "Failed to fetch ticket data"

const (
	criticalBelow = 10
	limitedBelow  = 30
)

// Poller runs fetch, reconcile and publish cycles at a fixed interval.
// Cycles run on the Run goroutine only, so they never overlap.
type Poller struct {
	tiers      []models.TierConfig
	fetcher    drepo.SnapshotFetcher
	reconciler *Reconciler
	publishers []drepo.SnapshotPublisher
	metrics    drepo.Metrics
	log        *applogger.Logger
	interval   time.Duration
	now        func() time.Time

	refresh chan struct{}
	seq     atomic.Uint64
}

// PollerOption configures Poller.
type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

func WithPublishers(pubs ...drepo.SnapshotPublisher) PollerOption {
	return func(p *Poller) { p.publishers = append(p.publishers, pubs...) }
}

func WithPollerLogger(l *applogger.Logger) PollerOption {
	return func(p *Poller) { p.log = l }
}

func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

// NewPoller copies tiers; later changes to the caller's slice are not seen.
func NewPoller(tiers []models.TierConfig, fetcher drepo.SnapshotFetcher, metrics drepo.Metrics, opts ...PollerOption) *Poller {
	own := append([]models.TierConfig(nil), tiers...)
	p := &Poller{
		tiers:      own,
		fetcher:    fetcher,
		reconciler: NewReconciler(own),
		metrics:    metrics,
		log:        applogger.Nop(),
		interval:   3 * time.Second,
		now:        time.Now,
		refresh:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is done. Every call starts from an empty reconciled map.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("poller started",
		applogger.Duration("interval_ms", p.interval),
		applogger.Int("tiers", len(p.tiers)),
	)
	defer p.log.Info("poller stopped")

	state := map[string]models.ReconciledTier{}
	state, _ = p.Cycle(ctx, state)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.refresh:
		}
		state, _ = p.Cycle(ctx, state)
	}
}

// Refresh asks for one extra cycle as soon as the current one finishes.
// Requests made while one is already queued are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Cycle runs one fetch, reconcile and publish pass. It returns the next map and
// the published snapshot; when ctx ends mid-pass nothing is published and prev is
// returned with a nil snapshot.
func (p *Poller) Cycle(ctx context.Context, prev map[string]models.ReconciledTier) (map[string]models.ReconciledTier, *models.DashboardSnapshot) {
	start := time.Now()
	records, err := p.fetcher.FetchSnapshot(ctx, p.tiers)
	if ctx.Err() != nil {
		return prev, nil
	}

	next := prev
	banner := ""
	result := resultOK
	if err != nil {
		banner = TotalFailureMessage
		result = "total_failure"
		records = nil
		p.log.Error("availability pass failed", applogger.Error(err))
	} else {
		next = p.reconciler.Reconcile(prev, records)
	}

	snap := p.snapshot(next, records, banner)
	if p.metrics != nil {
		p.metrics.RecordCycle(result, time.Since(start))
		for _, v := range snap.Tiers {
			if v.Observed {
				p.metrics.RecordTier(v.Name, v.Remaining, v.PercentSold)
			}
		}
	}
	p.publish(ctx, snap)
	return next, snap
}

func (p *Poller) snapshot(state map[string]models.ReconciledTier, records []models.AvailabilityRecord, banner string) *models.DashboardSnapshot {
	byID := make(map[string]models.AvailabilityRecord, len(records))
	for _, r := range records {
		byID[r.ExternalID] = r
	}

	snap := &models.DashboardSnapshot{
		Sequence:    p.seq.Add(1),
		GeneratedAt: p.now().UTC(),
		Error:       banner,
		Tiers:       make([]models.TierView, 0, len(p.tiers)),
	}

	for _, tier := range p.tiers {
		rt, observed := state[tier.ExternalID]
		rec, fresh := byID[tier.ExternalID]

		v := models.TierView{
			Name:       tier.Name,
			ExternalID: tier.ExternalID,
			PriceLabel: tier.PriceLabel,
			Observed:   observed,
		}
		if fresh && rec.Failed() {
			v.Error = rec.UpstreamError
			fresh = false
		}
		if observed {
			v.Stale = !fresh
			v.SoldOut = rt.SoldOut
			v.PinnedCapacity = rt.PinnedCapacity
			v.Remaining = rt.Remaining
			v.Booked = rt.Booked
			v.PercentSold = rt.PercentSold

			snap.Totals.Capacity += rt.PinnedCapacity
			snap.Totals.Booked += rt.Booked
			snap.Totals.Remaining += rt.Remaining
		}
		v.Status = tierStatus(v)
		snap.Tiers = append(snap.Tiers, v)
	}
	snap.Totals.PercentSold = PercentSold(snap.Totals.Booked, snap.Totals.Capacity)
	return snap
}

func tierStatus(v models.TierView) models.TierStatus {
	switch {
	case !v.Observed:
		return models.TierUnavailable
	case v.SoldOut || v.Remaining == 0:
		return models.TierSoldOut
	case v.Remaining < criticalBelow:
		return models.TierCritical
	case v.Remaining < limitedBelow:
		return models.TierLimited
	default:
		return models.TierAvailable
	}
}

func (p *Poller) publish(ctx context.Context, snap *models.DashboardSnapshot) {
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, snap); err != nil {
			p.log.Warn("snapshot publish failed",
				applogger.Uint64("sequence", snap.Sequence),
				applogger.Error(err),
			)
			if p.metrics != nil {
				p.metrics.RecordError("publish")
			}
		}
	}
}
