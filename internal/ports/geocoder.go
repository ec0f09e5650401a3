package ports

import (
	"context"
	"trip-route-service/internal/domain"
)

// Contract for turning a free-text address into coordinates.
type Geocoder interface {
	// Geocode returns Found=false when the provider has no match and an error
	// when the lookup itself failed (network, status, malformed response).
	Geocode(ctx context.Context, address string) (domain.GeocodeResult, error)
}

// Persistent or shared cache of address -> coordinates.
// Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
