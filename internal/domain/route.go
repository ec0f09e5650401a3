package domain

// RouteSource discriminates how a RouteResult was produced.
type RouteSource string

const (
	// Fewer than two active stops; nothing to draw.
	RouteNone RouteSource = "none"
	// Driving geometry and leg metrics from the routing provider.
	RouteRouted RouteSource = "routed"
	// Straight lines between active stops with haversine distance.
	RouteFallback RouteSource = "fallback"
)

// Distance and travel duration between two consecutive active stops.
type Leg struct {
	DistanceKm      float64
	DurationSeconds float64
}

// Leg metrics as reported by a routing provider.
type ProviderLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Raw output of a routing provider for one ordered list of waypoints.
// Geometry is already converted to lat-lng; distances stay in provider units.
type RoutedPath struct {
	Geometry        []Coordinates
	Legs            []ProviderLeg
	DistanceMeters  float64
	DurationSeconds float64
}

// Represents the route drawn for the current active set.
// It is recomputed from scratch on every active-set change and is never
// patched incrementally.
type RouteResult struct {
	Source               RouteSource
	PathPoints           []Coordinates
	Legs                 []Leg
	TotalDistanceKm      float64
	TotalDurationSeconds float64
	// Generation of the active-set state this result was computed for.
	Generation uint64
}

// EmptyRoute returns the result for a degenerate active set.
func EmptyRoute(points []Coordinates) RouteResult {
	path := []Coordinates{}
	if len(points) == 1 {
		path = append(path, points[0])
	}
	return RouteResult{
		Source:     RouteNone,
		PathPoints: path,
		Legs:       []Leg{},
	}
}
