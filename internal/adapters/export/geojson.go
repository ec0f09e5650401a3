package export

import (
	"fmt"
	"trip-route-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON renders stops and the route as a FeatureCollection.
// Stops use their true coordinates; the route is omitted when it has
// fewer than two points.
func GeoJSON(stops []domain.DisplayLocation, route domain.RouteResult) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	for _, s := range stops {
		f := geojson.NewFeature(orb.Point{s.Coordinate.Lng, s.Coordinate.Lat})
		f.Properties["kind"] = "stop"
		f.Properties["stop_id"] = s.StopID
		f.Properties["name"] = s.DisplayName
		f.Properties["sequence"] = s.Sequence
		f.Properties["active"] = s.Active
		f.Properties["role"] = string(s.Role)
		fc.Append(f)
	}

	if len(route.PathPoints) >= 2 {
		line := make(orb.LineString, 0, len(route.PathPoints))
		for _, p := range route.PathPoints {
			line = append(line, orb.Point{p.Lng, p.Lat})
		}

		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["source"] = string(route.Source)
		f.Properties["distance_km"] = route.TotalDistanceKm
		f.Properties["duration_seconds"] = route.TotalDurationSeconds
		f.Properties["generation"] = route.Generation
		fc.Append(f)
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return b, nil
}
