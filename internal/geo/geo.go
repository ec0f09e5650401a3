package geo

import (
	"fmt"
	"math"
	"trip-route-service/internal/domain"

	"github.com/twpayne/go-polyline"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineKm calculates the great-circle distance between two points in kilometres.
func HaversineKm(a, b domain.Coordinates) float64 {
	if a == b {
		return 0
	}

	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// PathLengthKm sums haversine distances between consecutive points.
func PathLengthKm(points []domain.Coordinates) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += HaversineKm(points[i], points[i+1])
	}
	return total
}

// EncodePolyline encodes points with the Google polyline algorithm (precision 1e5).
func EncodePolyline(points []domain.Coordinates) string {
	if len(points) == 0 {
		return ""
	}

	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes a Google encoded polyline (precision 1e5) to lat-lng points.
func DecodePolyline(encoded string) ([]domain.Coordinates, error) {
	if encoded == "" {
		return nil, fmt.Errorf("decode polyline: empty string")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}

	points := make([]domain.Coordinates, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		points = append(points, domain.Coordinates{Lat: c[0], Lng: c[1]})
	}
	return points, nil
}
