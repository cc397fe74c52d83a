package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TicketPulse/internal/domain/models"
	drepo "TicketPulse/internal/domain/repository"
)

func intPtr(v int) *int { return &v }

// stubSource answers per externalID from a table of canned responses.
type stubSource struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	calls     map[string]int
}

type stubResponse struct {
	payload *models.VendorAvailability
	err     error
	delay   time.Duration
}

func newStubSource(responses map[string]stubResponse) *stubSource {
	return &stubSource{responses: responses, calls: map[string]int{}}
}

func (s *stubSource) FetchAvailability(ctx context.Context, externalID string) (*models.VendorAvailability, error) {
	s.mu.Lock()
	s.calls[externalID]++
	r, ok := s.responses[externalID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no stub for %s", externalID)
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.payload, r.err
}

func remainingPayload(n int) stubResponse {
	return stubResponse{payload: &models.VendorAvailability{
		SubCampaigns: []models.VendorSubCampaign{{UpperLimit: intPtr(n)}},
	}}
}

func soldOutPayload() stubResponse {
	return stubResponse{payload: &models.VendorAvailability{ValidityEnds: intPtr(1)}}
}

var (
	errTransport = errors.New("connection refused")
	errMalformed = fmt.Errorf("vendor: %w", drepo.ErrMalformedPayload)
)

// recordingMetrics is a concurrency-safe Metrics fake.
type recordingMetrics struct {
	mu       sync.Mutex
	upstream map[string]int
	cycles   map[string]int
	tiers    map[string]float64
	errors   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		upstream: map[string]int{},
		cycles:   map[string]int{},
		tiers:    map[string]float64{},
		errors:   map[string]int{},
	}
}

func (m *recordingMetrics) RecordUpstream(tier, kind string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upstream[tier+"/"+kind]++
}

func (m *recordingMetrics) RecordCycle(result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[result]++
}

func (m *recordingMetrics) RecordTier(tier string, _ int, percentSold float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers[tier] = percentSold
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *recordingMetrics) cycleCount(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles[result]
}

type fetcherFunc func(ctx context.Context, tiers []models.TierConfig) ([]models.AvailabilityRecord, error)

func (f fetcherFunc) FetchSnapshot(ctx context.Context, tiers []models.TierConfig) ([]models.AvailabilityRecord, error) {
	return f(ctx, tiers)
}

// memoryStore is a SnapshotStore fake that also records every publication.
type memoryStore struct {
	mu        sync.Mutex
	latest    *models.DashboardSnapshot
	published []*models.DashboardSnapshot
	clears    int
	err       error
}

func (s *memoryStore) Publish(_ context.Context, snap *models.DashboardSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.latest = snap
	s.published = append(s.published, snap)
	return nil
}

func (s *memoryStore) Latest(context.Context) (*models.DashboardSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, drepo.ErrNoSnapshot
	}
	return s.latest, nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = nil
	s.clears++
	return nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}
