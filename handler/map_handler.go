package handler

import (
	"net/http"
	"spotnsort/models"
	"spotnsort/service"
	"strconv"
	"strings"
)

// MapHandler serves report markers as GeoJSON
type MapHandler struct {
	mapService *service.MapService
}

// NewMapHandler creates a new map handler
func NewMapHandler(mapService *service.MapService) *MapHandler {
	return &MapHandler{mapService: mapService}
}

// Markers handles GET /map?problem=&bbox=south,west,north,east
func (h *MapHandler) Markers(w http.ResponseWriter, r *http.Request) {
	q := service.MapQuery{Problem: r.URL.Query().Get("problem")}
	if bbox := r.URL.Query().Get("bbox"); bbox != "" {
		b, err := parseBBox(bbox)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		q.Bounds = b
	}

	fc, err := h.mapService.Markers(r.Context(), q)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	raw, err := fc.MarshalJSON()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to encode map")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func parseBBox(s string) (*service.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, models.NewValidationError("bbox", "bbox must be south,west,north,east")
	}
	v := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, models.NewValidationError("bbox", "bbox must be south,west,north,east")
		}
		v[i] = f
	}
	if v[0] > v[2] {
		return nil, models.NewValidationError("bbox", "south must not exceed north")
	}
	return &service.Bounds{South: v[0], West: v[1], North: v[2], East: v[3]}, nil
}
