package models

// ErrorKind classifies a per-tier upstream failure. It travels as data on a
// record; it is never returned as an error.
type ErrorKind string

const (
	ErrorNone        ErrorKind = ""
	ErrorFetchFailed ErrorKind = "fetch_failed"
	ErrorNoData      ErrorKind = "no_data"
)

// AvailabilityRecord is the normalized outcome of one upstream query for one tier.
// Remaining is meaningful only when SoldOut is false and UpstreamError is empty.
type AvailabilityRecord struct {
	TierName      string    `json:"tierName"`
	ExternalID    string    `json:"externalId"`
	PriceLabel    string    `json:"priceLabel,omitempty"`
	SoldOut       bool      `json:"soldOut"`
	Remaining     int       `json:"remaining"`
	UpstreamError ErrorKind `json:"upstreamError,omitempty"`
}

// Failed reports whether the record carries an upstream error.
func (r AvailabilityRecord) Failed() bool { return r.UpstreamError != ErrorNone }
