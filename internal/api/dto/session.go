package dto

import "trip-route-service/internal/domain"

type StopRequest struct {
	ID       string   `json:"id" validate:"required,max=128"`
	Name     string   `json:"name" validate:"max=256"`
	Sequence int      `json:"sequence"`
	Lat      *float64 `json:"lat" validate:"required_with=Lng"`
	Lng      *float64 `json:"lng" validate:"required_with=Lat"`
	Address  string   `json:"address" validate:"max=512"`
}

// Exactly one of PlanID or Stops selects the session's stops.
type CreateSessionRequest struct {
	PlanID string        `json:"plan_id" validate:"required_without=Stops,excluded_with=Stops,max=128"`
	Stops  []StopRequest `json:"stops" validate:"required_without=PlanID,max=500,dive"`
}

type ReloadStopsRequest struct {
	Stops []StopRequest `json:"stops" validate:"max=500,dive"`
}

// ToStops converts request stops to domain stops.
func ToStops(in []StopRequest) []domain.Stop {
	out := make([]domain.Stop, 0, len(in))
	for _, s := range in {
		stop := domain.Stop{
			ID:          s.ID,
			DisplayName: s.Name,
			Sequence:    s.Sequence,
			Address:     s.Address,
		}
		if s.Lat != nil && s.Lng != nil {
			stop.RawCoordinate = &domain.Coordinates{Lat: *s.Lat, Lng: *s.Lng}
		}
		out = append(out, stop)
	}
	return out
}

type StopResponse struct {
	StopID     string  `json:"stop_id"`
	Name       string  `json:"name"`
	Sequence   int     `json:"sequence"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DisplayLat float64 `json:"display_lat"`
	DisplayLng float64 `json:"display_lng"`
	Overlaps   int     `json:"overlaps"`
	Active     bool    `json:"active"`
	Role       string  `json:"role"`
	Source     string  `json:"source"`
}

type LegResponse struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type RouteResponse struct {
	Source               string               `json:"source"`
	Generation           uint64               `json:"generation"`
	StopIDs              []string             `json:"stop_ids"`
	Path                 []domain.Coordinates `json:"path"`
	Polyline             string               `json:"polyline"`
	Legs                 []LegResponse        `json:"legs"`
	TotalDistanceKm      float64              `json:"total_distance_km"`
	TotalDurationSeconds float64              `json:"total_duration_seconds"`
}

type RegionResponse struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta"`
}

type SnapshotResponse struct {
	SessionID     string         `json:"session_id"`
	PlanID        string         `json:"plan_id,omitempty"`
	Generation    uint64         `json:"generation"`
	Pending       bool           `json:"pending"`
	Stops         []StopResponse `json:"stops"`
	ActiveStopIDs []string       `json:"active_stop_ids"`
	Route         RouteResponse  `json:"route"`
	Region        RegionResponse `json:"region"`
}

type NavigationResponse struct {
	URL string `json:"url"`
}

type SuggestedOrderResponse struct {
	StopIDs           []string `json:"stop_ids"`
	SuggestedKm       float64  `json:"suggested_km"`
	CurrentKm         float64  `json:"current_km"`
	StraightLineBased bool     `json:"straight_line_based"`
}
