package export

import (
	"fmt"
	"image/color"
	"io"
	"trip-route-service/internal/domain"

	"github.com/twpayne/go-kml"
)

var routeColor = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}

// KML writes stops as placemarks and the route as a styled line.
// Inactive stops are left out.
func KML(w io.Writer, title string, stops []domain.DisplayLocation, route domain.RouteResult) error {
	children := []kml.Element{
		kml.Name(title),
		kml.SharedStyle("route",
			kml.LineStyle(
				kml.Color(routeColor),
				kml.Width(4),
			),
		),
	}

	for _, s := range stops {
		if !s.Active {
			continue
		}
		children = append(children, kml.Placemark(
			kml.Name(s.DisplayName),
			kml.Description(fmt.Sprintf("%s (%d)", s.Role, s.Sequence)),
			kml.Point(
				kml.Coordinates(kml.Coordinate{Lon: s.Coordinate.Lng, Lat: s.Coordinate.Lat}),
			),
		))
	}

	if len(route.PathPoints) >= 2 {
		coords := make([]kml.Coordinate, 0, len(route.PathPoints))
		for _, p := range route.PathPoints {
			coords = append(coords, kml.Coordinate{Lon: p.Lng, Lat: p.Lat})
		}
		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("Route (%.1f km)", route.TotalDistanceKm)),
			kml.StyleURL("#route"),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coords...),
			),
		))
	}

	if err := kml.KML(kml.Document(children...)).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("write kml: %w", err)
	}
	return nil
}
