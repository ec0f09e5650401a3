package routing

import (
	"context"
	"sync"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/geo"
)

// MockRouter fakes a driving router: the road distance of each leg is the
// great-circle distance times Detour, driven at SpeedKmh.
type MockRouter struct {
	Err       error
	Detour    float64
	SpeedKmh  float64
	mu        sync.Mutex
	waypoints [][]domain.Coordinates
}

func NewMockRouter() *MockRouter {
	return &MockRouter{Detour: 1.25, SpeedKmh: 72}
}

func (m *MockRouter) Route(ctx context.Context, waypoints []domain.Coordinates) (*domain.RoutedPath, error) {
	m.mu.Lock()
	m.waypoints = append(m.waypoints, append([]domain.Coordinates(nil), waypoints...))
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := &domain.RoutedPath{}
	for i, w := range waypoints {
		path.Geometry = append(path.Geometry, w)
		if i+1 == len(waypoints) {
			break
		}
		next := waypoints[i+1]
		path.Geometry = append(path.Geometry, domain.Coordinates{
			Lat: (w.Lat + next.Lat) / 2,
			Lng: (w.Lng + next.Lng) / 2,
		})

		meters := geo.HaversineKm(w, next) * 1000 * m.Detour
		seconds := meters / (m.SpeedKmh / 3.6)
		path.Legs = append(path.Legs, domain.ProviderLeg{DistanceMeters: meters, DurationSeconds: seconds})
		path.DistanceMeters += meters
		path.DurationSeconds += seconds
	}
	return path, nil
}

// Requests returns the waypoint lists received so far.
func (m *MockRouter) Requests() [][]domain.Coordinates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.Coordinates(nil), m.waypoints...)
}
