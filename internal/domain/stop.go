package domain

import "strings"

// Represents one planned waypoint of a trip plan.
// A Stop is owned by the trip-plan data source and is read-only for the
// route engine. It carries either a direct coordinate, a free-text address
// usable for geocoding, or neither (in which case it cannot be placed on the map).
type Stop struct {
	ID            string
	DisplayName   string
	Sequence      int
	RawCoordinate *Coordinates
	Address       string
}

// HasCoordinate reports whether the stop carries a usable direct coordinate.
func (s Stop) HasCoordinate() bool {
	return s.RawCoordinate != nil && s.RawCoordinate.Valid()
}

// GeocodeQuery returns the trimmed address, or "" when there is nothing to geocode.
func (s Stop) GeocodeQuery() string {
	return strings.Join(strings.Fields(s.Address), " ")
}

type LocationSource string

const (
	SourceRaw      LocationSource = "raw"
	SourceGeocoded LocationSource = "geocoded"
	SourceMemo     LocationSource = "cached"
)

// Output of the location resolver for one stop.
// Coordinate is the true position used for routing and distance math and
// is never mutated by later stages.
type ResolvedLocation struct {
	StopID      string
	DisplayName string
	Coordinate  Coordinates
	Sequence    int
	Source      LocationSource
}

type MarkerRole string

const (
	RoleStart MarkerRole = "start"
	RoleStop  MarkerRole = "stop"
	RoleEnd   MarkerRole = "end"
)

// ResolvedLocation plus a render-safe coordinate.
// OffsetCoordinate equals Coordinate unless the marker collides with an
// earlier one.
type DisplayLocation struct {
	ResolvedLocation
	OffsetCoordinate Coordinates
	Overlaps         int
	Active           bool
	Role             MarkerRole
}

// Result of a geocoding lookup. Found is false when the provider had no match.
type GeocodeResult struct {
	Found            bool
	Coordinates      Coordinates
	FormattedAddress string
}
