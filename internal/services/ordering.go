package services

import (
	"math"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/geo"
)

// Suggested visiting order for the active stops.
type OrderSuggestion struct {
	StopIDs           []string
	SuggestedKm       float64
	CurrentKm         float64
	StraightLineBased bool
}

// Suggest a visiting order using a greedy nearest-neighbor algorithm.
//
// The first active stop stays fixed as the starting point; each step moves
// to the closest remaining stop by great-circle distance. It does not attempt
// global optimization and never changes the session's own order.
func SuggestOrder(active []domain.ResolvedLocation) OrderSuggestion {
	current := make([]domain.Coordinates, 0, len(active))
	for _, l := range active {
		current = append(current, l.Coordinate)
	}

	out := OrderSuggestion{
		StopIDs:           []string{},
		CurrentKm:         geo.PathLengthKm(current),
		StraightLineBased: true,
	}
	if len(active) == 0 {
		return out
	}

	remaining := make(map[string]domain.ResolvedLocation, len(active)-1)
	for _, l := range active[1:] {
		remaining[l.StopID] = l
	}

	currentLocation := active[0]
	out.StopIDs = append(out.StopIDs, currentLocation.StopID)

	for len(remaining) > 0 {
		var best string
		minDistance := math.Inf(1)

		// Select next stop by minimum distance (greedy step).
		for id, l := range remaining {
			d := geo.HaversineKm(currentLocation.Coordinate, l.Coordinate)
			// Tie-breaker ensures deterministic ordering when distances are equal.
			if d < minDistance || (d == minDistance && (best == "" || id < best)) {
				minDistance = d
				best = id
			}
		}

		out.SuggestedKm += minDistance
		out.StopIDs = append(out.StopIDs, best)
		currentLocation = remaining[best]
		delete(remaining, best)
	}

	return out
}
