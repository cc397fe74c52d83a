package models

import "time"

// TierListing is a tier as shown on the public event pages.
type TierListing struct {
	Name        string `json:"name"`
	PriceLabel  string `json:"priceLabel"`
	Price       int64  `json:"price"`
	BookingLink string `json:"bookingLink,omitempty"`
	PartySize   int    `json:"partySize,omitempty"`
	SoldOut     bool   `json:"soldOut"`
}

// WindowView is a registration window evaluated at request time.
type WindowView struct {
	OpensAt          *time.Time `json:"opensAt,omitempty"`
	OpeningText      string     `json:"openingText,omitempty"`
	Open             bool       `json:"open"`
	SecondsUntilOpen int64      `json:"secondsUntilOpen"`
}

type Venue struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	MapsLink string `json:"mapsLink,omitempty"`
}

// EventView is the public event page payload.
type EventView struct {
	Name    string        `json:"name"`
	Venue   Venue         `json:"venue"`
	Main    WindowView    `json:"main"`
	Teacher WindowView    `json:"teacher"`
	Tiers   []TierListing `json:"tiers"`
}
