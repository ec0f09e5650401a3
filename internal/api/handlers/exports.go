package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"trip-route-service/internal/adapters/export"
)

// RouteGeoJSON serves stops and route as a GeoJSON FeatureCollection.
func (h *SessionHandler) RouteGeoJSON(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := sess.Controller.Snapshot()
	b, err := export.GeoJSON(snap.Display, snap.Route)
	if err != nil {
		h.fail(w, r, "geojson export failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(b)
}

// RouteKML serves the active stops and route as a KML download.
func (h *SessionHandler) RouteKML(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	title := "Route"
	if sess.PlanID != "" {
		title = "Route " + sess.PlanID
	}

	snap := sess.Controller.Snapshot()
	var buf bytes.Buffer
	if err := export.KML(&buf, title, snap.Display, snap.Route); err != nil {
		h.fail(w, r, "kml export failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="route-%s.kml"`, sess.ID))
	_, _ = w.Write(buf.Bytes())
}
