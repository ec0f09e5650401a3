package geocoding

import (
	"context"
	"fmt"
	"sync"
	"time"
	"trip-route-service/internal/domain"
)

// MockGeocoder answers from a fixed address table.
// Unknown addresses are "not found"; addresses listed in Fail return an error.
type MockGeocoder struct {
	Table map[string]domain.Coordinates
	Fail  map[string]bool
	// Delay per address, to shuffle completion order in tests.
	Delay map[string]time.Duration

	mu    sync.Mutex
	calls []string
}

func NewMockGeocoder(table map[string]domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{
		Table: table,
		Fail:  map[string]bool{},
		Delay: map[string]time.Duration{},
	}
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, address)
	m.mu.Unlock()

	if d := m.Delay[address]; d > 0 {
		select {
		case <-ctx.Done():
			return domain.GeocodeResult{}, ctx.Err()
		case <-time.After(d):
		}
	}

	if m.Fail[address] {
		return domain.GeocodeResult{}, fmt.Errorf("mock geocoder: lookup %q failed", address)
	}

	c, ok := m.Table[address]
	if !ok {
		return domain.GeocodeResult{Found: false}, nil
	}
	return domain.GeocodeResult{Found: true, Coordinates: c, FormattedAddress: address}, nil
}

// Calls returns the addresses looked up so far, in call order.
func (m *MockGeocoder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
