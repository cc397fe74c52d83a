package tickets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TicketPulse/internal/domain/models"
	drepo "TicketPulse/internal/domain/repository"
	xhttp "TicketPulse/pkg/http"
)

// Client is a SnapshotFetcher backed by another instance's GET /api/tickets,
// for dashboards deployed apart from the aggregator.
type Client struct {
	url  string
	http *xhttp.Client
}

func New(baseURL string, timeout time.Duration, opts ...xhttp.ClientOption) drepo.SnapshotFetcher {
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &Client{
		url:  strings.TrimRight(baseURL, "/") + "/api/tickets",
		http: xhttp.NewClient(opts...),
	}
}

type ticketsResponse struct {
	Status int                         `json:"status"`
	Data   []models.AvailabilityRecord `json:"data"`
}

// FetchSnapshot returns one record per requested tier. Any failure to obtain
// the remote pass is a total failure; tiers the remote did not report are
// marked FetchFailed.
func (c *Client) FetchSnapshot(ctx context.Context, tiers []models.TierConfig) ([]models.AvailabilityRecord, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("remote aggregator: no tiers")
	}

	var resp ticketsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.url,
		Headers: map[string]string{
			"Accept":        xhttp.ContentTypeJSON,
			"Cache-Control": "no-cache",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("remote aggregator: %w", err)
	}

	byID := make(map[string]models.AvailabilityRecord, len(resp.Data))
	for _, r := range resp.Data {
		byID[r.ExternalID] = r
	}

	out := make([]models.AvailabilityRecord, 0, len(tiers))
	for _, t := range tiers {
		r, ok := byID[t.ExternalID]
		if !ok {
			r = models.AvailabilityRecord{ExternalID: t.ExternalID, UpstreamError: models.ErrorFetchFailed}
		}
		r.TierName = t.Name
		r.PriceLabel = t.PriceLabel
		out = append(out, r)
	}
	return out, nil
}
