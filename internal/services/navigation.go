package services

import (
	"errors"
	"net/url"
	"strings"
	"trip-route-service/internal/domain"
)

var ErrNoActiveStops = errors.New("no active stops")

// NavigationURL builds a Google Maps directions link through the active stops.
// The first stop is the origin, the last the destination, and any stops in
// between become waypoints. A single stop becomes the destination, leaving
// the origin to the device's current location.
func NavigationURL(active []domain.ResolvedLocation) (string, error) {
	if len(active) == 0 {
		return "", ErrNoActiveStops
	}

	q := url.Values{}
	q.Set("api", "1")
	q.Set("travelmode", "driving")
	q.Set("destination", active[len(active)-1].Coordinate.String())

	if len(active) > 1 {
		q.Set("origin", active[0].Coordinate.String())
	}

	if len(active) > 2 {
		middle := make([]string, 0, len(active)-2)
		for _, l := range active[1 : len(active)-1] {
			middle = append(middle, l.Coordinate.String())
		}
		q.Set("waypoints", strings.Join(middle, "|"))
	}

	u := url.URL{
		Scheme:   "https",
		Host:     "www.google.com",
		Path:     "/maps/dir/",
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}
