package handler

import (
	"net/http"
	"spotnsort/middleware"
	"spotnsort/models"
	"spotnsort/service"
	"strconv"

	"github.com/gorilla/mux"
)

const defaultNearRadiusKm = 5.0

// AuthorityHandler serves the authority side: working set, drafts, progress and resolution
type AuthorityHandler struct {
	managementService *service.ManagementService
	analyticsService  *service.AnalyticsService
}

// NewAuthorityHandler creates a new authority handler
func NewAuthorityHandler(managementService *service.ManagementService, analyticsService *service.AnalyticsService) *AuthorityHandler {
	return &AuthorityHandler{
		managementService: managementService,
		analyticsService:  analyticsService,
	}
}

// ListReports handles GET /authority/reports?problem=&q=&lat=&lng=&radiusKm=
func (h *AuthorityHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	overview, err := h.managementService.Overview(r.Context(), user.Email, filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, overview)
}

func parseFilter(r *http.Request) (service.Filter, error) {
	q := r.URL.Query()
	filter := service.Filter{Problem: q.Get("problem"), Query: q.Get("q")}
	if filter.Query == "" {
		filter.Query = q.Get("area")
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		return filter, nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return filter, models.NewValidationError("lat", "lat and lng must both be numbers")
	}
	radius := defaultNearRadiusKm
	if s := q.Get("radiusKm"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return filter, models.NewValidationError("radiusKm", "radiusKm must be a positive number")
		}
		radius = v
	}
	filter.Near = &service.NearFilter{Lat: lat, Lng: lng, RadiusKm: radius}
	return filter, nil
}

// Analytics handles GET /authority/analytics
func (h *AuthorityHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analyticsService.Compute(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, analytics)
}

// GetDraft handles GET /authority/reports/{id}/draft
func (h *AuthorityHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}
	id := mux.Vars(r)["id"]

	drafts, err := h.managementService.GetDrafts(r.Context(), user.Email)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"draft":       drafts[id],
		"photoStaged": h.managementService.HasStagedPhoto(user.Email, id),
	})
}

// SaveDraft handles PUT /authority/reports/{id}/draft
func (h *AuthorityHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}

	var draft models.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	if err := h.managementService.SaveDraft(r.Context(), user.Email, mux.Vars(r)["id"], draft); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, draft)
}

// StagePhoto handles POST /authority/reports/{id}/photo with {photo: dataURI}
func (h *AuthorityHandler) StagePhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}

	var req models.PhotoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	if err := h.managementService.StagePhoto(user.Email, mux.Vars(r)["id"], req.Photo); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Photo selected!"})
}

// MarkInProgress handles POST /authority/reports/{id}/in-progress
func (h *AuthorityHandler) MarkInProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.managementService.MarkInProgress(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Report updated!"})
}

// Resolve handles POST /authority/reports/{id}/resolve
func (h *AuthorityHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}

	if err := h.managementService.Resolve(r.Context(), user.Email, mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Report updated!"})
}
