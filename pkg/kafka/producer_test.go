package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestProducer_PublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	reg := prometheus.NewRegistry()
	p, err := NewProducer(WithWriter(w), WithRegisterer(reg))
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "snapshots", []byte("k"), map[string]int{"seq": 1}))
	require.NoError(t, p.Publish(context.Background(), "snapshots", nil, "raw"))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "snapshots", w.msgs[0].Topic)
	assert.Equal(t, []byte("k"), w.msgs[0].Key)
	assert.JSONEq(t, `{"seq":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))

	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("snapshots", "ok")))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	reg := prometheus.NewRegistry()
	p, err := NewProducer(WithWriter(w), WithRegisterer(reg))
	require.NoError(t, err)

	assert.Error(t, p.PublishBatch(context.Background(), "t", []Message{{Value: "a"}, {Value: "b"}}))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("t", "error")))
	assert.NoError(t, p.PublishBatch(context.Background(), "t", nil))
}
