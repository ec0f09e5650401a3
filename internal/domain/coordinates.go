package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Return coordinates as [lng, lat] for external API compatibility.
func (c Coordinates) LngLat() []float64 { return []float64{c.Lng, c.Lat} }

// FromLngLat converts a provider [lng, lat] pair.
func FromLngLat(pair []float64) (Coordinates, error) {
	if len(pair) < 2 {
		return Coordinates{}, fmt.Errorf("coordinate pair: want 2 components, got %d", len(pair))
	}
	c := Coordinates{Lat: pair[1], Lng: pair[0]}
	if !c.Valid() {
		return Coordinates{}, fmt.Errorf("coordinate pair: out of range lng=%v lat=%v", pair[0], pair[1])
	}
	return c, nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}
