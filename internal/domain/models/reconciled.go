package models

import "time"

// ReconciledTier is the running view of one tier for the lifetime of a dashboard
// session. PinnedCapacity is set once, on the first successful observation.
type ReconciledTier struct {
	TierName       string  `json:"tierName"`
	ExternalID     string  `json:"externalId"`
	PinnedCapacity int     `json:"pinnedCapacity"`
	SoldOut        bool    `json:"soldOut"`
	Remaining      int     `json:"remaining"`
	Booked         int     `json:"booked"`
	PercentSold    float64 `json:"percentSold"`
}

// TierStatus is the display classification of a tier.
type TierStatus string

const (
	TierUnavailable TierStatus = "unavailable"
	TierSoldOut     TierStatus = "sold_out"
	TierCritical    TierStatus = "critical"
	TierLimited     TierStatus = "limited"
	TierAvailable   TierStatus = "available"
)

// TierView is one row of the dashboard. Observed is false until the tier has been
// read successfully at least once; Stale marks last-known numbers shown because the
// latest read failed.
type TierView struct {
	Name           string     `json:"name"`
	ExternalID     string     `json:"externalId"`
	PriceLabel     string     `json:"priceLabel"`
	Observed       bool       `json:"observed"`
	Stale          bool       `json:"stale"`
	Error          ErrorKind  `json:"error,omitempty"`
	SoldOut        bool       `json:"soldOut"`
	PinnedCapacity int        `json:"pinnedCapacity"`
	Remaining      int        `json:"remaining"`
	Booked         int        `json:"booked"`
	PercentSold    float64    `json:"percentSold"`
	Status         TierStatus `json:"status"`
}

// Totals sums the observed tiers.
type Totals struct {
	Capacity    int     `json:"capacity"`
	Booked      int     `json:"booked"`
	Remaining   int     `json:"remaining"`
	PercentSold float64 `json:"percentSold"`
}

// DashboardSnapshot is published once per poll cycle and is never modified after
// publication.
type DashboardSnapshot struct {
	Sequence    uint64     `json:"sequence"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Error       string     `json:"error,omitempty"`
	Tiers       []TierView `json:"tiers"`
	Totals      Totals     `json:"totals"`
}
