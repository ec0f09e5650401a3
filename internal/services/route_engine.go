package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/geo"
	"trip-route-service/internal/platform/obs"
	"trip-route-service/internal/ports"

	"go.uber.org/zap"
)

// DefaultMaxWaypoints matches the waypoint cap of common public routing providers.
const DefaultMaxWaypoints = 25

var errNoRouter = errors.New("no router configured")

// RouteEngine turns an ordered list of active locations into a RouteResult.
//
// It never returns an error: any routing failure degrades to straight lines
// between the stops with haversine distance and no duration.
type RouteEngine struct {
	router       ports.Router
	maxWaypoints int
	log          *zap.Logger
}

func NewRouteEngine(router ports.Router, maxWaypoints int, log *zap.Logger) *RouteEngine {
	if maxWaypoints < 2 {
		maxWaypoints = DefaultMaxWaypoints
	}
	return &RouteEngine{
		router:       router,
		maxWaypoints: maxWaypoints,
		log:          log,
	}
}

// Compute routes the active locations in the given order.
func (e *RouteEngine) Compute(ctx context.Context, active []domain.ResolvedLocation) domain.RouteResult {
	points := make([]domain.Coordinates, 0, len(active))
	for _, l := range active {
		points = append(points, l.Coordinate)
	}

	if len(points) < 2 {
		return domain.EmptyRoute(points)
	}

	result, err := e.route(ctx, points)
	if err != nil {
		e.log.Warn("routing failed; using straight-line fallback",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Int("waypoints", len(points)),
			zap.Error(err))
		return fallbackRoute(points)
	}

	return result
}

func (e *RouteEngine) route(ctx context.Context, points []domain.Coordinates) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, e.log, "route.compute")(&err)

	if e.router == nil {
		return domain.RouteResult{}, errNoRouter
	}

	chunks := chunkWaypoints(points, e.maxWaypoints)

	result := domain.RouteResult{
		Source:     domain.RouteRouted,
		PathPoints: make([]domain.Coordinates, 0, len(points)),
		Legs:       make([]domain.Leg, 0, len(points)-1),
	}

	var meters, seconds float64
	for i, chunk := range chunks {
		path, err := e.router.Route(ctx, chunk)
		if err != nil {
			return domain.RouteResult{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if err := checkRoutedPath(path, len(chunk)); err != nil {
			return domain.RouteResult{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}

		geometry := path.Geometry
		// Consecutive chunks share their boundary stop. Providers snap it to
		// the road independently, so the joint is dropped without comparing.
		if i > 0 {
			geometry = geometry[1:]
		}
		result.PathPoints = append(result.PathPoints, geometry...)

		for _, l := range path.Legs {
			result.Legs = append(result.Legs, domain.Leg{
				DistanceKm:      l.DistanceMeters / 1000,
				DurationSeconds: l.DurationSeconds,
			})
		}

		meters += path.DistanceMeters
		seconds += path.DurationSeconds
	}

	result.TotalDistanceKm = meters / 1000
	result.TotalDurationSeconds = seconds

	return result, nil
}

// checkRoutedPath rejects partial or malformed provider results.
func checkRoutedPath(path *domain.RoutedPath, waypoints int) error {
	if path == nil {
		return errors.New("router returned no route")
	}
	if len(path.Geometry) < 2 {
		return fmt.Errorf("route geometry has %d points", len(path.Geometry))
	}
	if len(path.Legs) != waypoints-1 {
		return fmt.Errorf("route has %d legs for %d waypoints", len(path.Legs), waypoints)
	}
	if !finiteNonNegative(path.DistanceMeters) || !finiteNonNegative(path.DurationSeconds) {
		return fmt.Errorf("route totals invalid: distance=%v duration=%v", path.DistanceMeters, path.DurationSeconds)
	}
	for i, l := range path.Legs {
		if !finiteNonNegative(l.DistanceMeters) || !finiteNonNegative(l.DurationSeconds) {
			return fmt.Errorf("leg %d invalid: distance=%v duration=%v", i, l.DistanceMeters, l.DurationSeconds)
		}
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// chunkWaypoints splits points into windows of at most limit points where each
// window starts at the previous window's last point.
func chunkWaypoints(points []domain.Coordinates, limit int) [][]domain.Coordinates {
	if len(points) <= limit {
		return [][]domain.Coordinates{points}
	}

	chunks := make([][]domain.Coordinates, 0, len(points)/(limit-1)+1)
	for start := 0; start < len(points)-1; {
		end := min(start+limit, len(points))
		chunks = append(chunks, points[start:end])
		start = end - 1
	}
	return chunks
}

func fallbackRoute(points []domain.Coordinates) domain.RouteResult {
	return domain.RouteResult{
		Source:               domain.RouteFallback,
		PathPoints:           slices.Clone(points),
		Legs:                 []domain.Leg{},
		TotalDistanceKm:      geo.PathLengthKm(points),
		TotalDurationSeconds: 0,
	}
}
