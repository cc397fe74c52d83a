package usecase

import (
	"context"
	"errors"
	"time"

	"TicketPulse/internal/domain/models"
	drepo "TicketPulse/internal/domain/repository"
	applogger "TicketPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrNoTiers is the total-failure result for a pass with nothing to enumerate.
var ErrNoTiers = errors.New("no tiers configured")

const resultOK = "ok"

// Aggregator turns the tier list into one availability snapshot per pass.
type Aggregator struct {
	source  drepo.AvailabilitySource
	metrics drepo.Metrics
	log     *applogger.Logger
	timeout time.Duration
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithFetchTimeout bounds each per-tier upstream call.
func WithFetchTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.timeout = d }
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(l *applogger.Logger) AggregatorOption {
	return func(a *Aggregator) { a.log = l }
}

func NewAggregator(source drepo.AvailabilitySource, metrics drepo.Metrics, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		source:  source,
		metrics: metrics,
		log:     applogger.Nop(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchSnapshot queries every tier concurrently and returns exactly one record
// per tier, in input order. Per-tier failures are carried on the record; the
// returned error is reserved for passes that could not run at all.
func (a *Aggregator) FetchSnapshot(ctx context.Context, tiers []models.TierConfig) ([]models.AvailabilityRecord, error) {
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]models.AvailabilityRecord, len(tiers))
	var g errgroup.Group
	for i, tier := range tiers {
		i, tier := i, tier
		g.Go(func() error {
			records[i] = a.fetchTier(ctx, tier)
			return nil
		})
	}
	_ = g.Wait()

	return records, nil
}

func (a *Aggregator) fetchTier(ctx context.Context, tier models.TierConfig) models.AvailabilityRecord {
	rec := models.AvailabilityRecord{
		TierName:   tier.Name,
		ExternalID: tier.ExternalID,
		PriceLabel: tier.PriceLabel,
	}

	fctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	payload, err := a.source.FetchAvailability(fctx, tier.ExternalID)
	switch {
	case errors.Is(err, drepo.ErrMalformedPayload):
		rec.UpstreamError = models.ErrorNoData
	case err != nil:
		rec.UpstreamError = models.ErrorFetchFailed
	default:
		Classify(payload, &rec)
	}

	result := resultOK
	if rec.Failed() {
		result = string(rec.UpstreamError)
		a.log.Warn("tier availability unavailable",
			applogger.String("tier", tier.Name),
			applogger.String("external_id", tier.ExternalID),
			applogger.String("kind", result),
			applogger.Error(err),
		)
	}
	if a.metrics != nil {
		a.metrics.RecordUpstream(tier.Name, result, time.Since(start))
	}
	return rec
}

// Classify interprets a vendor payload into rec. The exhaustion flag wins; then
// the first sub-campaign with a non-negative upper limit gives the remaining
// count; anything else is NoData.
func Classify(payload *models.VendorAvailability, rec *models.AvailabilityRecord) {
	if payload == nil {
		rec.UpstreamError = models.ErrorNoData
		return
	}
	if payload.ValidityEnds != nil && *payload.ValidityEnds == 1 {
		rec.SoldOut = true
		rec.Remaining = 0
		return
	}
	for _, sc := range payload.SubCampaigns {
		if sc.UpperLimit != nil && *sc.UpperLimit >= 0 {
			rec.Remaining = *sc.UpperLimit
			return
		}
	}
	rec.UpstreamError = models.ErrorNoData
}
