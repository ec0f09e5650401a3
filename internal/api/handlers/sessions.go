package handlers

import (
	"errors"
	"net/http"
	"trip-route-service/internal/api/dto"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/geo"
	"trip-route-service/internal/platform/obs"
	"trip-route-service/internal/platform/validate"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/services"

	"go.uber.org/zap"
)

// SessionHandler exposes route view sessions.
type SessionHandler struct {
	Store *services.SessionStore
	// Repo is optional; without it sessions can only be created from inline stops.
	Repo ports.StopRepository
	Log  *zap.Logger
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, validate.Message(err))
		return
	}

	stops := dto.ToStops(req.Stops)
	if req.PlanID != "" {
		if h.Repo == nil {
			writeError(w, r, http.StatusNotImplemented, "plan lookup is not configured")
			return
		}

		var err error
		stops, err = h.Repo.ListPlanStops(r.Context(), req.PlanID)
		if errors.Is(err, ports.ErrPlanNotFound) {
			writeError(w, r, http.StatusNotFound, "plan not found")
			return
		}
		if err != nil {
			h.fail(w, r, "list plan stops failed", err)
			return
		}
	}

	sess, snap, err := h.Store.Create(r.Context(), req.PlanID, stops)
	if err != nil {
		h.fail(w, r, "create session failed", err)
		return
	}

	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, r, http.StatusCreated, snapshotResponse(sess, snap))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, snapshotResponse(sess, sess.Controller.Snapshot()))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.PathValue("id")); err != nil {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReloadStops replaces the session's stops. Surviving stops keep their active flag.
func (h *SessionHandler) ReloadStops(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ReloadStopsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, validate.Message(err))
		return
	}

	snap, err := sess.Controller.Load(r.Context(), dto.ToStops(req.Stops))
	if err != nil {
		h.fail(w, r, "reload stops failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshotResponse(sess, snap))
}

func (h *SessionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	snap, err := sess.Controller.Toggle(r.Context(), r.PathValue("stopID"))
	if errors.Is(err, services.ErrUnknownStop) {
		writeError(w, r, http.StatusNotFound, "stop not found")
		return
	}
	if err != nil {
		h.fail(w, r, "toggle failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshotResponse(sess, snap))
}

func (h *SessionHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	link, err := services.NavigationURL(sess.Controller.ActiveLocations())
	if errors.Is(err, services.ErrNoActiveStops) {
		writeError(w, r, http.StatusConflict, "no active stops")
		return
	}
	if err != nil {
		h.fail(w, r, "build navigation url failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NavigationResponse{URL: link})
}

func (h *SessionHandler) SuggestedOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	s := services.SuggestOrder(sess.Controller.ActiveLocations())
	writeJSON(w, r, http.StatusOK, dto.SuggestedOrderResponse{
		StopIDs:           s.StopIDs,
		SuggestedKm:       s.SuggestedKm,
		CurrentKm:         s.CurrentKm,
		StraightLineBased: s.StraightLineBased,
	})
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	sess, err := h.Store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.Log.Error(msg,
		zap.String("req_id", obs.RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func snapshotResponse(sess *services.Session, snap services.Snapshot) dto.SnapshotResponse {
	stops := make([]dto.StopResponse, 0, len(snap.Display))
	for _, d := range snap.Display {
		stops = append(stops, dto.StopResponse{
			StopID:     d.StopID,
			Name:       d.DisplayName,
			Sequence:   d.Sequence,
			Lat:        d.Coordinate.Lat,
			Lng:        d.Coordinate.Lng,
			DisplayLat: d.OffsetCoordinate.Lat,
			DisplayLng: d.OffsetCoordinate.Lng,
			Overlaps:   d.Overlaps,
			Active:     d.Active,
			Role:       string(d.Role),
			Source:     string(d.Source),
		})
	}

	return dto.SnapshotResponse{
		SessionID:     sess.ID,
		PlanID:        sess.PlanID,
		Generation:    snap.Generation,
		Pending:       snap.Pending,
		Stops:         stops,
		ActiveStopIDs: nonNil(snap.ActiveStopIDs),
		Route:         routeResponse(snap.Route, snap.RouteStopIDs),
		Region: dto.RegionResponse{
			Latitude:       snap.Region.Latitude,
			Longitude:      snap.Region.Longitude,
			LatitudeDelta:  snap.Region.LatitudeDelta,
			LongitudeDelta: snap.Region.LongitudeDelta,
		},
	}
}

func routeResponse(route domain.RouteResult, stopIDs []string) dto.RouteResponse {
	legs := make([]dto.LegResponse, 0, len(route.Legs))
	for _, l := range route.Legs {
		legs = append(legs, dto.LegResponse{DistanceKm: l.DistanceKm, DurationSeconds: l.DurationSeconds})
	}

	path := route.PathPoints
	if path == nil {
		path = []domain.Coordinates{}
	}

	return dto.RouteResponse{
		Source:               string(route.Source),
		Generation:           route.Generation,
		StopIDs:              nonNil(stopIDs),
		Path:                 path,
		Polyline:             geo.EncodePolyline(path),
		Legs:                 legs,
		TotalDistanceKm:      route.TotalDistanceKm,
		TotalDurationSeconds: route.TotalDurationSeconds,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
