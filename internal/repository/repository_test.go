package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"TicketPulse/internal/domain/models"
	"TicketPulse/internal/domain/repository"
	"TicketPulse/pkg/cache"
	pkgkafka "TicketPulse/pkg/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(seq uint64) *models.DashboardSnapshot {
	return &models.DashboardSnapshot{
		Sequence:    seq,
		GeneratedAt: time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC),
		Tiers: []models.TierView{
			{Name: "Gold", ExternalID: "922867", Observed: true, PinnedCapacity: 60, Remaining: 20, Booked: 40, PercentSold: 66.7, Status: models.TierLimited},
			{Name: "Silver", ExternalID: "922871", Error: models.ErrorFetchFailed, Status: models.TierUnavailable},
		},
		Totals: models.Totals{Capacity: 60, Booked: 40, Remaining: 20, PercentSold: 66.7},
	}
}

func TestCacheSnapshotStore(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheSnapshotStore(mc, time.Minute)

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, repository.ErrNoSnapshot)

	require.NoError(t, store.Publish(ctx, sampleSnapshot(2)))
	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(2), got)

	require.NoError(t, store.Publish(ctx, sampleSnapshot(1)), "older snapshots are ignored")
	got, _ = store.Latest(ctx)
	assert.Equal(t, uint64(2), got.Sequence)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Latest(ctx)
	assert.ErrorIs(t, err, repository.ErrNoSnapshot)

	require.NoError(t, store.Publish(ctx, sampleSnapshot(1)), "sequence tracking restarts after clear")
	got, _ = store.Latest(ctx)
	assert.Equal(t, uint64(1), got.Sequence)
}

func TestCacheSnapshotStore_Expires(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheSnapshotStore(mc, time.Millisecond)

	require.NoError(t, store.Publish(ctx, sampleSnapshot(1)))
	time.Sleep(5 * time.Millisecond)
	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, repository.ErrNoSnapshot)
}

type captureWriter struct{ msgs []kafka.Message }

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaSnapshotPublisher(t *testing.T) {
	w := &captureWriter{}
	producer, err := pkgkafka.NewProducer(pkgkafka.WithWriter(w))
	require.NoError(t, err)

	pub := NewKafkaSnapshotPublisher(producer, "ticketpulse.snapshots")
	require.NoError(t, pub.Publish(context.Background(), sampleSnapshot(5)))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "922867", string(w.msgs[0].Key))
	assert.Equal(t, "ticketpulse.snapshots", w.msgs[0].Topic)

	var tier map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &tier))
	assert.Equal(t, 5.0, tier["sequence"])
	assert.Equal(t, "Gold", tier["name"])
	assert.Equal(t, 40.0, tier["booked"])

	assert.Equal(t, "dashboard", string(w.msgs[2].Key))
	var snap models.DashboardSnapshot
	require.NoError(t, json.Unmarshal(w.msgs[2].Value, &snap))
	assert.Equal(t, *sampleSnapshot(5), snap)
}

func TestKafkaLogPublisher(t *testing.T) {
	w := &captureWriter{}
	producer, err := pkgkafka.NewProducer(pkgkafka.WithWriter(w))
	require.NoError(t, err)

	pub := NewKafkaLogPublisher(producer, "ticketpulse")
	require.NoError(t, pub.PublishMessage(context.Background(), "logs", []string{"a"}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "logs", w.msgs[0].Topic)
	assert.Equal(t, "ticketpulse", string(w.msgs[0].Key))
	assert.JSONEq(t, `["a"]`, string(w.msgs[0].Value))
}
