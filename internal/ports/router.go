package ports

import (
	"context"
	"trip-route-service/internal/domain"
)

// Contract for a driving-routing provider.
type Router interface {
	// Route returns the driving path through the waypoints in order.
	// Any error means the caller should fall back to straight lines.
	Route(ctx context.Context, waypoints []domain.Coordinates) (*domain.RoutedPath, error)
}
