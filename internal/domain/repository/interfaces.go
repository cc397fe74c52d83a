package repository

import (
	"context"
	"errors"
	"time"

	"TicketPulse/internal/domain/models"
)

var (
	// ErrNoSnapshot is returned by a SnapshotStore before the first cycle has been published.
	ErrNoSnapshot = errors.New("no snapshot published")
	// ErrMalformedPayload marks an upstream 2xx response whose body could not be interpreted.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// AvailabilitySource queries the upstream vendor for one tier. Errors wrapping
// ErrMalformedPayload mean the vendor answered but said nothing usable.
type AvailabilitySource interface {
	FetchAvailability(ctx context.Context, externalID string) (*models.VendorAvailability, error)
}

// SnapshotFetcher runs one aggregation pass over the given tiers. A non-nil error
// means the whole pass failed; per-tier failures are carried on the records.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, tiers []models.TierConfig) ([]models.AvailabilityRecord, error)
}

// SnapshotPublisher receives every dashboard snapshot.
type SnapshotPublisher interface {
	Publish(ctx context.Context, s *models.DashboardSnapshot) error
}

// SnapshotStore keeps the latest dashboard snapshot for request/response readers.
type SnapshotStore interface {
	SnapshotPublisher
	Latest(ctx context.Context) (*models.DashboardSnapshot, error)
	Clear(ctx context.Context) error
}

type Metrics interface {
	RecordUpstream(tier string, kind string, d time.Duration)
	RecordCycle(result string, d time.Duration)
	RecordTier(tier string, remaining int, percentSold float64)
	RecordError(kind string)
}
