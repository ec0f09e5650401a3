package ports

import (
	"context"
	"errors"
	"trip-route-service/internal/domain"
)

// Port: a boundary for reading the ordered stops of a trip plan.
type StopRepository interface {
	// Retrieve the stops of a plan ordered by sequence.
	// Returns ErrPlanNotFound when the plan has no stops.
	ListPlanStops(ctx context.Context, planID string) ([]domain.Stop, error)
}

var ErrPlanNotFound = errors.New("plan not found")
