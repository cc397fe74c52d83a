package usecase

import (
	"errors"
	"sort"
	"time"

	"TicketPulse/internal/domain/models"
	"TicketPulse/pkg/util"
)

var ErrTierNotFound = errors.New("tier not found")

// Catalog serves the static event metadata and tier listings.
type Catalog struct {
	event       models.EventInfo
	listings    []models.TierListing
	teacherTier string
	now         func() time.Time
}

// NewCatalog indexes the enabled tiers once, sorted by ascending price.
// Labels without digits sort last, keeping their configured order.
func NewCatalog(event models.EventInfo, tiers []models.TierConfig, teacherTier string) *Catalog {
	type priced struct {
		listing models.TierListing
		known   bool
	}
	items := make([]priced, 0, len(tiers))
	for _, t := range tiers {
		if !t.Enabled {
			continue
		}
		price, known := util.ParsePriceLabel(t.PriceLabel)
		items = append(items, priced{
			listing: models.TierListing{
				Name:        t.Name,
				PriceLabel:  t.PriceLabel,
				Price:       price,
				BookingLink: t.BookingLink,
				PartySize:   t.PartySize,
				SoldOut:     t.SoldOut,
			},
			known: known,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].known != items[j].known {
			return items[i].known
		}
		return items[i].listing.Price < items[j].listing.Price
	})

	listings := make([]models.TierListing, len(items))
	for i, it := range items {
		listings[i] = it.listing
	}
	return &Catalog{event: event, listings: listings, teacherTier: teacherTier, now: time.Now}
}

// Event returns the event page with registration windows evaluated now.
func (c *Catalog) Event() models.EventView {
	now := c.now()
	return models.EventView{
		Name: c.event.Name,
		Venue: models.Venue{
			Name:     c.event.VenueName,
			Address:  c.event.VenueAddress,
			MapsLink: c.event.VenueMapsLink,
		},
		Main:    window(now, c.event.Main),
		Teacher: window(now, c.event.Teacher),
		Tiers:   append([]models.TierListing(nil), c.listings...),
	}
}

// TeacherTier returns the listing for the configured teacher tier.
func (c *Catalog) TeacherTier() (models.TierListing, error) {
	if c.teacherTier == "" {
		return models.TierListing{}, ErrTierNotFound
	}
	for _, l := range c.listings {
		if l.Name == c.teacherTier {
			return l, nil
		}
	}
	return models.TierListing{}, ErrTierNotFound
}

func window(now time.Time, w models.RegistrationWindow) models.WindowView {
	v := models.WindowView{OpeningText: w.OpeningText}
	opensAt, ok := util.ParseTime(w.OpensAt)
	if ok {
		v.OpensAt = &opensAt
	}
	open, left := util.UntilOpen(now, opensAt)
	v.Open = open
	v.SecondsUntilOpen = int64(left / time.Second)
	return v
}
