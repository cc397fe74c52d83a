package usecase

import (
	"math"

	"TicketPulse/internal/domain/models"
)

// Reconciler merges availability snapshots into the running per-tier view.
// It holds only the immutable tier index; the map itself is owned by the caller.
type Reconciler struct {
	nominal map[string]int
}

func NewReconciler(tiers []models.TierConfig) *Reconciler {
	nominal := make(map[string]int, len(tiers))
	for _, t := range tiers {
		nominal[t.ExternalID] = t.NominalCapacity
	}
	return &Reconciler{nominal: nominal}
}

// Reconcile returns a new map; previous is never modified. Failed records and
// records for unknown tiers leave the map as it was.
func (r *Reconciler) Reconcile(previous map[string]models.ReconciledTier, snapshot []models.AvailabilityRecord) map[string]models.ReconciledTier {
	next := make(map[string]models.ReconciledTier, len(previous)+len(snapshot))
	for id, t := range previous {
		next[id] = t
	}

	for _, rec := range snapshot {
		if rec.Failed() {
			continue
		}
		nominal, known := r.nominal[rec.ExternalID]
		if !known {
			continue
		}

		pinned := nominal
		if prior, ok := previous[rec.ExternalID]; ok {
			pinned = prior.PinnedCapacity
		}

		remaining := rec.Remaining
		if rec.SoldOut {
			remaining = 0
		}
		booked := pinned - remaining
		if booked < 0 {
			booked = 0
		}

		next[rec.ExternalID] = models.ReconciledTier{
			TierName:       rec.TierName,
			ExternalID:     rec.ExternalID,
			PinnedCapacity: pinned,
			SoldOut:        rec.SoldOut,
			Remaining:      remaining,
			Booked:         booked,
			PercentSold:    PercentSold(booked, pinned),
		}
	}
	return next
}

// PercentSold is booked/capacity*100 rounded to one decimal, 0 for no capacity.
func PercentSold(booked, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return math.Round(float64(booked)/float64(capacity)*1000) / 10
}
