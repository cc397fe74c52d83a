package models

// TierConfig is one statically configured ticket tier. The list is loaded once at
// startup and never mutated.
type TierConfig struct {
	Name            string
	ExternalID      string
	PriceLabel      string
	BookingLink     string
	NominalCapacity int
	PartySize       int  // people admitted per ticket
	SoldOut         bool // manual override shown on the public pages
	Enabled         bool
}

// EventInfo is the static event metadata shown on the public pages.
type EventInfo struct {
	Name          string
	VenueName     string
	VenueAddress  string
	VenueMapsLink string
	Main          RegistrationWindow
	Teacher       RegistrationWindow
}

// RegistrationWindow describes when registration for a page opens.
type RegistrationWindow struct {
	OpensAt     string // RFC3339 with offset, as configured
	OpeningText string
}
