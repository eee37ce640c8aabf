package handler

import (
	"net/http"
	"spotnsort/middleware"
	"spotnsort/models"
	"spotnsort/service"

	"github.com/gorilla/mux"
)

// ReportHandler serves the citizen side: submitting, listing, summary, rewards and rating
type ReportHandler struct {
	submissionService *service.SubmissionService
	reportService     *service.ReportService
}

// NewReportHandler creates a new citizen report handler
func NewReportHandler(submissionService *service.SubmissionService, reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		submissionService: submissionService,
		reportService:     reportService,
	}
}

// Categories handles GET /categories
func (h *ReportHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"problems":       models.ProblemCategories,
		"priorities":     []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh},
		"authorityRoles": models.AuthorityRoles,
	})
}

// Submit handles POST /user/reports
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}

	var req models.SubmitReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	form, err := h.submissionService.FormFromRequest(user, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	created, err := h.submissionService.Submit(r.Context(), user, form)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Report submitted successfully!",
		"report":  created,
	})
}

// ListMine handles GET /user/reports
func (h *ReportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}
	reports, err := h.reportService.MyReports(r.Context(), user.Email)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}

// Summary handles GET /user/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}
	reports, err := h.reportService.MyReports(r.Context(), user.Email)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.reportService.Summary(reports))
}

// Rewards handles GET /user/rewards
func (h *ReportHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}
	rewards, err := h.reportService.Rewards(r.Context(), user.Email)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rewards)
}

// Rate handles PUT /user/reports/{id}/rating
func (h *ReportHandler) Rate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}

	var req models.RatingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.reportService.Rate(r.Context(), user.Email, id, req.Rating); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"id": id, "rating": req.Rating})
}
