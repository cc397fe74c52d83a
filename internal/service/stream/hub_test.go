package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TicketPulse/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, h *Hub) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeWS(w, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) models.DashboardSnapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var snap models.DashboardSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	return snap
}

func TestHub_BroadcastsSnapshots(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "clients"})
	h := NewHub(WithClientGauge(gauge))
	url := startHub(t, h)

	require.NoError(t, h.Publish(context.Background(), &models.DashboardSnapshot{Sequence: 1}))

	a := dial(t, url)
	assert.Equal(t, uint64(1), readSnapshot(t, a).Sequence, "late joiners get the latest snapshot")

	b := dial(t, url)
	readSnapshot(t, b)
	require.Eventually(t, func() bool { return h.Clients() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(gauge))

	require.NoError(t, h.Publish(context.Background(), &models.DashboardSnapshot{Sequence: 2, Error: "banner"}))
	for _, c := range []*websocket.Conn{a, b} {
		snap := readSnapshot(t, c)
		assert.Equal(t, uint64(2), snap.Sequence)
		assert.Equal(t, "banner", snap.Error)
	}
}

func TestHub_CloseAll(t *testing.T) {
	h := NewHub()
	url := startHub(t, h)
	require.NoError(t, h.Publish(context.Background(), &models.DashboardSnapshot{Sequence: 7}))

	conn := dial(t, url)
	readSnapshot(t, conn)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, time.Millisecond)

	h.CloseAll()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, 0, h.Clients())

	fresh := dial(t, url)
	require.NoError(t, fresh.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err = fresh.ReadMessage()
	assert.Error(t, err, "no snapshot is replayed after CloseAll")
}

func TestHub_DisconnectedClientIsRemoved(t *testing.T) {
	h := NewHub()
	url := startHub(t, h)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, time.Millisecond)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	h := NewHub(WithAllowedOrigins("https://dash.example"))
	url := startHub(t, h)

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_PingKeepsIdleClient(t *testing.T) {
	h := NewHub(WithPingInterval(20 * time.Millisecond))
	conn := dial(t, startHub(t, h))
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = h.Publish(context.Background(), &models.DashboardSnapshot{Sequence: 9})
	}()

	// Reading answers pings; the client must outlive several pong deadlines.
	snap := readSnapshot(t, conn)
	assert.Equal(t, uint64(9), snap.Sequence)
	assert.Equal(t, 1, h.Clients())
}
