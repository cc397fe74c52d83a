package usecase

import (
	"context"
	"testing"
	"time"

	"TicketPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tiers(ids ...string) []models.TierConfig {
	out := make([]models.TierConfig, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TierConfig{Name: "T" + id, ExternalID: id, PriceLabel: "₹" + id, NominalCapacity: 100, Enabled: true})
	}
	return out
}

func TestAggregator_ClassifiesEachTier(t *testing.T) {
	src := newStubSource(map[string]stubResponse{
		"avail":   remainingPayload(42),
		"sold":    soldOutPayload(),
		"down":    {err: errTransport},
		"garbled": {err: errMalformed},
		"empty":   {payload: &models.VendorAvailability{}},
	})
	m := newRecordingMetrics()
	agg := NewAggregator(src, m)

	recs, err := agg.FetchSnapshot(context.Background(), tiers("avail", "sold", "down", "garbled", "empty"))
	require.NoError(t, err)
	require.Len(t, recs, 5)

	assert.Equal(t, models.AvailabilityRecord{TierName: "Tavail", ExternalID: "avail", PriceLabel: "₹avail", Remaining: 42}, recs[0])
	assert.True(t, recs[1].SoldOut)
	assert.Equal(t, 0, recs[1].Remaining)
	assert.False(t, recs[1].Failed())
	assert.Equal(t, models.ErrorFetchFailed, recs[2].UpstreamError)
	assert.Equal(t, models.ErrorNoData, recs[3].UpstreamError)
	assert.Equal(t, models.ErrorNoData, recs[4].UpstreamError)

	assert.Equal(t, 1, m.upstream["Tavail/ok"])
	assert.Equal(t, 1, m.upstream["Tdown/fetch_failed"])
	assert.Equal(t, 1, m.upstream["Tgarbled/no_data"])
}

func TestAggregator_FailureIsIsolated(t *testing.T) {
	src := newStubSource(map[string]stubResponse{
		"slow": {delay: time.Second},
		"fast": remainingPayload(7),
	})
	agg := NewAggregator(src, nil, WithFetchTimeout(30*time.Millisecond))

	start := time.Now()
	recs, err := agg.FetchSnapshot(context.Background(), tiers("slow", "fast"))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 500*time.Millisecond, "the pass is bounded by the per-tier timeout")
	assert.Equal(t, models.ErrorFetchFailed, recs[0].UpstreamError)
	assert.Equal(t, 7, recs[1].Remaining)
	assert.False(t, recs[1].Failed())
	assert.Equal(t, 1, src.calls["fast"], "no retries within a pass")
}

func TestAggregator_TotalFailure(t *testing.T) {
	agg := NewAggregator(newStubSource(nil), nil)

	_, err := agg.FetchSnapshot(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTiers)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = agg.FetchSnapshot(ctx, tiers("a"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		payload   *models.VendorAvailability
		soldOut   bool
		remaining int
		kind      models.ErrorKind
	}{
		{name: "nil payload", kind: models.ErrorNoData},
		{name: "sold out wins over sub campaigns", payload: &models.VendorAvailability{
			ValidityEnds: intPtr(1),
			SubCampaigns: []models.VendorSubCampaign{{UpperLimit: intPtr(5)}},
		}, soldOut: true},
		{name: "validity_ends 0 reads sub campaign", payload: &models.VendorAvailability{
			ValidityEnds: intPtr(0),
			SubCampaigns: []models.VendorSubCampaign{{UpperLimit: intPtr(5)}},
		}, remaining: 5},
		{name: "skips unusable entries", payload: &models.VendorAvailability{
			SubCampaigns: []models.VendorSubCampaign{{}, {UpperLimit: intPtr(-1)}, {UpperLimit: intPtr(0)}},
		}, remaining: 0},
		{name: "only negative", payload: &models.VendorAvailability{
			SubCampaigns: []models.VendorSubCampaign{{UpperLimit: intPtr(-3)}},
		}, kind: models.ErrorNoData},
		{name: "empty list", payload: &models.VendorAvailability{SubCampaigns: []models.VendorSubCampaign{}}, kind: models.ErrorNoData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec models.AvailabilityRecord
			Classify(tc.payload, &rec)
			assert.Equal(t, tc.soldOut, rec.SoldOut)
			assert.Equal(t, tc.remaining, rec.Remaining)
			assert.Equal(t, tc.kind, rec.UpstreamError)
		})
	}
}
