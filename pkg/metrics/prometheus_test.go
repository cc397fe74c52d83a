package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordUpstream("Gold", "ok", 120*time.Millisecond)
	r.RecordUpstream("Gold", "fetch_failed", time.Second)
	r.RecordCycle("ok", 2*time.Second)
	r.RecordTier("Gold", 42, 30.5)
	r.RecordError("publish")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstreamTotal.WithLabelValues("Gold", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstreamTotal.WithLabelValues("Gold", "fetch_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cyclesTotal.WithLabelValues("ok")))
	assert.Equal(t, 42.0, testutil.ToFloat64(r.remaining.WithLabelValues("Gold")))
	assert.Equal(t, 30.5, testutil.ToFloat64(r.percentSold.WithLabelValues("Gold")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("publish")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
