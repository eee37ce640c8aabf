package service

import (
	"context"
	"errors"
	"fmt"
	"spotnsort/metrics"
	"spotnsort/models"
	"spotnsort/photo"
	"spotnsort/utils"
	"strings"
	"sync"

	"github.com/apex/log"
)

// FormState is the lifecycle of one report form
type FormState string

const (
	FormEditing    FormState = "editing"
	FormValidating FormState = "validating"
	FormSubmitting FormState = "submitting"
	FormSuccess    FormState = "success"
	FormFailed     FormState = "failed"
)

// SubmitFailedMessage is the only message shown when the collaborator rejects a submission
const SubmitFailedMessage = "Error submitting report."

// ErrSubmitFailed marks a submission rejected by the collaborator. The cause is
// wrapped alongside it.
var ErrSubmitFailed = errors.New(SubmitFailedMessage)

// Form is the citizen's report form
type Form struct {
	State       FormState
	Problem     string
	Subtype     string
	Priority    models.Priority
	Description string
	Name        string
	Phone       string
	Area        string
	Lat         *float64
	Lng         *float64
	Photo       string

	areaLocked bool
}

// NewForm returns an empty form prefilled with the user's name and phone
func NewForm(user *models.User) *Form {
	f := &Form{State: FormEditing}
	if user != nil {
		f.Name = user.Name
		f.Phone = user.Phone
	}
	return f
}

// SelectProblem sets the problem category and clears the subtype
func (f *Form) SelectProblem(problem string) error {
	if problem != "" {
		if _, ok := models.FindCategory(problem); !ok {
			return models.NewValidationError("problem", fmt.Sprintf("unknown problem %q", problem))
		}
	}
	f.Problem = problem
	f.Subtype = ""
	return nil
}

// SelectSubtype sets the subtype, which must belong to the selected problem
func (f *Form) SelectSubtype(subtype string) error {
	if subtype == "" {
		f.Subtype = ""
		return nil
	}
	category, ok := models.FindCategory(f.Problem)
	if !ok || !category.HasSubtype(subtype) {
		return models.NewValidationError("subtype", fmt.Sprintf("%q is not a subtype of %q", subtype, f.Problem))
	}
	f.Subtype = subtype
	return nil
}

// SetArea sets the free-text area; ignored once the current location is in use
func (f *Form) SetArea(area string) {
	if f.areaLocked {
		return
	}
	f.Area = area
}

// AreaLocked reports whether the area was filled from the device position
func (f *Form) AreaLocked() bool {
	return f.areaLocked
}

// UseCurrentLocation makes pos authoritative. A nil pos means the device refused.
func (f *Form) UseCurrentLocation(pos *models.Position) error {
	if pos == nil {
		return &models.PermissionError{Resource: "location"}
	}
	lat, lng := pos.Lat, pos.Lng
	f.Lat = &lat
	f.Lng = &lng
	f.Area = fmt.Sprintf("Lat: %.5f, Lng: %.5f", lat, lng)
	f.areaLocked = true
	return nil
}

// SetPhoto replaces the photo; the last one set wins
func (f *Form) SetPhoto(dataURI string) error {
	if !photo.IsImageDataURI(dataURI) {
		return models.NewValidationError("photo", "photo must be an image")
	}
	f.Photo = dataURI
	return nil
}

// Validate fails closed on the first missing required field
func (f *Form) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"problem", f.Problem},
		{"subtype", f.Subtype},
		{"priority", string(f.Priority)},
		{"description", strings.TrimSpace(f.Description)},
		{"area", strings.TrimSpace(f.Area)},
		{"photo", f.Photo},
	}
	for _, r := range required {
		if r.value == "" {
			return models.NewValidationError(r.field, "Please fill all required fields.")
		}
	}
	if !f.Priority.Valid() {
		return models.NewValidationError("priority", "priority must be Low, Medium or High")
	}
	return nil
}

// Reset clears the report fields and returns the form to editing
func (f *Form) Reset() {
	name, phone := f.Name, f.Phone
	*f = Form{State: FormEditing, Name: name, Phone: phone}
}

func (f *Form) toNewReport(userEmail string) *models.NewReport {
	return &models.NewReport{
		UserEmail:   userEmail,
		Problem:     f.Problem,
		Subtype:     f.Subtype,
		Priority:    f.Priority,
		Description: f.Description,
		Name:        f.Name,
		Phone:       f.Phone,
		Area:        f.Area,
		Lat:         f.Lat,
		Lng:         f.Lng,
		Photo:       f.Photo,
	}
}

// SubmissionService turns a citizen form into a report on the collaborator
type SubmissionService struct {
	backend   ReportBackend
	geocoder  Geocoder
	encoder   *photo.Encoder
	refresher Refresher

	mu           sync.Mutex
	fingerprints map[string]string // user email -> last successful submission
}

// NewSubmissionService creates a new submission service. refresher may be nil.
func NewSubmissionService(backend ReportBackend, geocoder Geocoder, encoder *photo.Encoder, refresher Refresher) *SubmissionService {
	return &SubmissionService{
		backend:      backend,
		geocoder:     geocoder,
		encoder:      encoder,
		refresher:    refresher,
		fingerprints: make(map[string]string),
	}
}

// FormFromRequest replays a posted form onto a fresh Form in input order:
// problem, subtype, fields, location, picked photo, camera frame.
func (s *SubmissionService) FormFromRequest(user *models.User, req *models.SubmitReportRequest) (*Form, error) {
	f := NewForm(user)
	if err := f.SelectProblem(req.Problem); err != nil {
		return f, err
	}
	if err := f.SelectSubtype(req.Subtype); err != nil {
		return f, err
	}
	f.Priority = req.Priority
	f.Description = req.Description
	if req.Name != "" {
		f.Name = req.Name
	}
	if req.Phone != "" {
		f.Phone = req.Phone
	}
	if req.UseCurrentLocation {
		if err := f.UseCurrentLocation(req.CurrentLocation); err != nil {
			return f, err
		}
	}
	f.SetArea(req.Area)

	if req.Photo != "" {
		if err := f.SetPhoto(req.Photo); err != nil {
			return f, err
		}
	}
	if req.CameraFrame != "" {
		captured, err := s.encoder.CaptureFrame(req.CameraFrame)
		if err != nil {
			return f, models.NewValidationError("cameraFrame", err.Error())
		}
		if err := f.SetPhoto(captured); err != nil {
			return f, err
		}
	}
	return f, nil
}

// Submit validates, locates and posts the form on behalf of user
func (s *SubmissionService) Submit(ctx context.Context, user *models.User, f *Form) (*models.Report, error) {
	f.State = FormValidating
	if err := f.Validate(); err != nil {
		f.State = FormEditing
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if !f.areaLocked {
		result, err := s.geocoder.Forward(ctx, f.Area)
		if err != nil {
			f.State = FormEditing
			metrics.SubmissionsTotal.WithLabelValues("no_location").Inc()
			log.WithField("area", f.Area).Warnf("[submission] area not located: %v", err)
			return nil, err
		}
		lat, lng := result.Lat, result.Lng
		f.Lat = &lat
		f.Lng = &lng
	}

	fingerprint := utils.SubmissionFingerprint(f.Photo, f.Description, f.Area)
	key := strings.ToLower(user.Email)
	s.mu.Lock()
	duplicate := s.fingerprints[key] == fingerprint
	s.mu.Unlock()
	if duplicate {
		f.State = FormEditing
		metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		return nil, models.ErrDuplicateSubmission
	}

	f.State = FormSubmitting
	created, err := s.backend.CreateReport(ctx, f.toNewReport(user.Email))
	if err != nil {
		f.State = FormFailed
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		log.WithField("email", user.Email).Errorf("[submission] create report failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	s.mu.Lock()
	s.fingerprints[key] = fingerprint
	s.mu.Unlock()

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	log.WithFields(log.Fields{"email": user.Email, "problem": f.Problem, "id": created.ID}).Info("[submission] report submitted")
	f.Reset()
	f.State = FormSuccess
	refresh(ctx, s.refresher)
	return created, nil
}
