package services

import (
	"math"
	"trip-route-service/internal/domain"
)

// Region is a map viewport: centre plus span in degrees.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta"`
}

// DefaultRegion frames Switzerland; used when no stop could be placed.
var DefaultRegion = Region{
	Latitude:       46.8182,
	Longitude:      8.2275,
	LatitudeDelta:  2,
	LongitudeDelta: 2,
}

const (
	regionPadding  = 1.3
	minRegionDelta = 0.1
)

// FitRegion frames all locations with padding.
func FitRegion(locs []domain.ResolvedLocation) Region {
	if len(locs) == 0 {
		return DefaultRegion
	}

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLng, maxLng := math.Inf(1), math.Inf(-1)
	for _, l := range locs {
		minLat = math.Min(minLat, l.Coordinate.Lat)
		maxLat = math.Max(maxLat, l.Coordinate.Lat)
		minLng = math.Min(minLng, l.Coordinate.Lng)
		maxLng = math.Max(maxLng, l.Coordinate.Lng)
	}

	return Region{
		Latitude:       (minLat + maxLat) / 2,
		Longitude:      (minLng + maxLng) / 2,
		LatitudeDelta:  math.Max((maxLat-minLat)*regionPadding, minRegionDelta),
		LongitudeDelta: math.Max((maxLng-minLng)*regionPadding, minRegionDelta),
	}
}
