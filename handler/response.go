package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"spotnsort/models"
	"spotnsort/photo"
	"spotnsort/service"

	"github.com/apex/log"
)

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError sends an error response
func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	response := models.ErrorResponse{
		Error:   errorType,
		Message: message,
		Code:    statusCode,
	}
	respondWithJSON(w, statusCode, response)
}

// respondWithServiceError maps the error taxonomy onto HTTP statuses
func respondWithServiceError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	var pErr *models.PermissionError
	var netErr *models.NetworkError

	switch {
	case errors.As(err, &vErr):
		respondWithError(w, http.StatusBadRequest, "Validation error", vErr.Message)
	case errors.As(err, &pErr):
		respondWithError(w, http.StatusBadRequest, "Permission denied", pErr.Error()+"; "+manualFallbackHint(pErr.Resource))
	case errors.Is(err, models.ErrNotOwner):
		respondWithError(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, models.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, models.ErrNoResolutionPhoto):
		respondWithError(w, http.StatusBadRequest, "Validation error", "Upload a photo first!")
	case errors.Is(err, models.ErrNoGeocodeMatch):
		respondWithError(w, http.StatusUnprocessableEntity, "Location not found", err.Error())
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrNotResolved),
		errors.Is(err, models.ErrDuplicateSubmission),
		errors.Is(err, models.ErrUserExists):
		respondWithError(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, service.ErrSubmitFailed):
		respondWithError(w, http.StatusBadGateway, "Upstream error", service.SubmitFailedMessage)
	case errors.As(err, &netErr):
		status := http.StatusBadGateway
		if netErr.StatusCode >= 400 && netErr.StatusCode < 500 {
			status = netErr.StatusCode
		}
		message := netErr.Message
		if message == "" {
			message = "Failed to reach the report service"
		}
		respondWithError(w, status, "Upstream error", message)
	default:
		log.Errorf("[http] unhandled error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Something went wrong")
	}
}

// maxJSONBodyBytes fits a picked photo plus a camera frame, both base64 encoded
var maxJSONBodyBytes int64 = 3 * photo.MaxUploadBytes

func manualFallbackHint(resource string) string {
	if resource == "camera" {
		return "pick a photo from your files instead"
	}
	return "enter the area manually"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func respondWithDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Invalid request", "Request body is too large")
		return
	}
	respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
}
