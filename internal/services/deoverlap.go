package services

import (
	"math"
	"trip-route-service/internal/domain"
)

const (
	// ~11 m at Swiss latitudes.
	DefaultCollisionThreshold = 1e-4
	// ~33 m at Swiss latitudes.
	DefaultOffsetMagnitude = 3e-4

	offsetSlots = 8
)

type OverlapConfig struct {
	CollisionThreshold float64
	OffsetMagnitude    float64
}

func DefaultOverlapConfig() OverlapConfig {
	return OverlapConfig{
		CollisionThreshold: DefaultCollisionThreshold,
		OffsetMagnitude:    DefaultOffsetMagnitude,
	}
}

// Deoverlap assigns each location a render-safe marker position.
//
// A location whose true coordinate lies within the collision threshold (in
// both axes) of k earlier locations is placed on a circle of radius
// OffsetMagnitude around its true coordinate, at angle k*45 degrees. The
// angle repeats after eight collocated markers.
//
// Deoverlap is pure: the true coordinates are copied, never modified.
func Deoverlap(locs []domain.ResolvedLocation, cfg OverlapConfig) []domain.DisplayLocation {
	out := make([]domain.DisplayLocation, 0, len(locs))

	for i, loc := range locs {
		k := 0
		for j := 0; j < i; j++ {
			prev := locs[j].Coordinate
			if math.Abs(prev.Lat-loc.Coordinate.Lat) <= cfg.CollisionThreshold &&
				math.Abs(prev.Lng-loc.Coordinate.Lng) <= cfg.CollisionThreshold {
				k++
			}
		}

		offset := loc.Coordinate
		if k > 0 {
			angle := float64(k) * (2 * math.Pi / offsetSlots)
			offset = domain.Coordinates{
				Lat: loc.Coordinate.Lat + cfg.OffsetMagnitude*math.Cos(angle),
				Lng: loc.Coordinate.Lng + cfg.OffsetMagnitude*math.Sin(angle),
			}
		}

		out = append(out, domain.DisplayLocation{
			ResolvedLocation: loc,
			OffsetCoordinate: offset,
			Overlaps:         k,
			Active:           true,
			Role:             markerRole(i, len(locs)),
		})
	}

	return out
}

func markerRole(i, n int) domain.MarkerRole {
	switch {
	case i == 0:
		return domain.RoleStart
	case i == n-1:
		return domain.RoleEnd
	default:
		return domain.RoleStop
	}
}
