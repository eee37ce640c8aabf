package handler

import (
	"errors"
	"net/http"
	"spotnsort/photo"
)

// PhotoHandler converts picked files into data URIs
type PhotoHandler struct{}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler() *PhotoHandler {
	return &PhotoHandler{}
}

// Upload handles POST /photos (multipart field "file")
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUploadBytes+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	uri, err := photo.FromUpload(file)
	switch {
	case errors.Is(err, photo.ErrTooLarge):
		respondWithError(w, http.StatusRequestEntityTooLarge, "Validation error", err.Error())
		return
	case errors.Is(err, photo.ErrNotImage):
		respondWithError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	case err != nil:
		respondWithError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"photo": uri})
}
