package service

import (
	"context"
	"fmt"
	"spotnsort/models"
	"spotnsort/photo"
	"spotnsort/repository"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0088

// Filter narrows the authority working set. All set criteria must match.
type Filter struct {
	// Problem matches either the problem or the subtype, case-insensitively
	Problem string
	// Query is a substring of "area locality city lat lng"
	Query string
	Near  *NearFilter
}

// NearFilter keeps reports within RadiusKm of a point
type NearFilter struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// ManagementService drives the authority side: listing, drafts, progress and resolution
type ManagementService struct {
	backend   ReportBackend
	drafts    *repository.DraftRepository
	refresher Refresher

	mu     sync.Mutex
	staged map[string]string // stagedKey -> resolution photo
}

// NewManagementService creates a new management service. refresher may be nil.
func NewManagementService(backend ReportBackend, drafts *repository.DraftRepository, refresher Refresher) *ManagementService {
	return &ManagementService{
		backend:   backend,
		drafts:    drafts,
		refresher: refresher,
		staged:    make(map[string]string),
	}
}

// Load fetches all reports and returns the actionable ones (Pending or In Progress)
// together with counts over the entire collection.
func (s *ManagementService) Load(ctx context.Context) ([]models.Report, models.StatusCounts, error) {
	all, err := s.backend.ListReports(ctx)
	if err != nil {
		return nil, models.StatusCounts{}, err
	}
	return Actionable(all), models.CountStatuses(all), nil
}

// Actionable keeps reports an authority can still act on
func Actionable(reports []models.Report) []models.Report {
	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == models.StatusPending || r.Status == models.StatusInProgress {
			out = append(out, r)
		}
	}
	return out
}

// Overview is the authority working set: filtered actionable reports, global
// counts and the authority's drafts.
func (s *ManagementService) Overview(ctx context.Context, authorityEmail string, f Filter) (*models.ManageReportsResponse, error) {
	reports, stats, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	drafts, err := s.drafts.GetDrafts(ctx, authorityEmail)
	if err != nil {
		return nil, err
	}
	return &models.ManageReportsResponse{
		Reports: FilterReports(reports, f),
		Stats:   stats,
		Drafts:  drafts,
	}, nil
}

// FilterReports applies f to reports, keeping input order
func FilterReports(reports []models.Report, f Filter) []models.Report {
	problem := strings.ToLower(strings.TrimSpace(f.Problem))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	var center s2.LatLng
	if f.Near != nil {
		center = s2.LatLngFromDegrees(f.Near.Lat, f.Near.Lng)
	}

	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if problem != "" && strings.ToLower(r.Problem) != problem && strings.ToLower(r.Subtype) != problem {
			continue
		}
		if query != "" && !strings.Contains(searchText(r), query) {
			continue
		}
		if f.Near != nil {
			if !r.HasLocation() {
				continue
			}
			d := center.Distance(s2.LatLngFromDegrees(*r.Lat, *r.Lng)).Radians() * earthRadiusKm
			if d > f.Near.RadiusKm {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func searchText(r models.Report) string {
	parts := []string{r.Area, r.Locality, r.City, formatCoord(r.Lat), formatCoord(r.Lng)}
	return strings.ToLower(strings.Join(parts, " "))
}

// formatCoord renders a coordinate the shortest way; zero and missing render empty
func formatCoord(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// GetDrafts returns the authority's drafts keyed by report id
func (s *ManagementService) GetDrafts(ctx context.Context, authorityEmail string) (map[string]models.Draft, error) {
	return s.drafts.GetDrafts(ctx, authorityEmail)
}

// SaveDraft stores the authority's unsent inputs for a report
func (s *ManagementService) SaveDraft(ctx context.Context, authorityEmail, reportID string, d models.Draft) error {
	if err := validateDraft(d); err != nil {
		return err
	}
	return s.drafts.SaveDraft(ctx, authorityEmail, reportID, d)
}

func validateDraft(d models.Draft) error {
	if d.ScheduleDate != "" {
		if _, err := time.Parse("2006-01-02", d.ScheduleDate); err != nil {
			return models.NewValidationError("scheduleDate", "date must be YYYY-MM-DD")
		}
	}
	if d.ScheduleTime != "" {
		if _, err := time.Parse("15:04", d.ScheduleTime); err != nil {
			return models.NewValidationError("scheduleTime", "time must be HH:MM")
		}
	}
	if d.EstimatedDays != "" {
		n, err := strconv.Atoi(d.EstimatedDays)
		if err != nil || n < 0 {
			return models.NewValidationError("estimatedDays", "estimated days must be a non-negative number")
		}
	}
	return nil
}

func stagedKey(authorityEmail, reportID string) string {
	return strings.ToLower(authorityEmail) + "|" + reportID
}

// StagePhoto keeps the resolution photo for a report until Resolve; the last one wins
func (s *ManagementService) StagePhoto(authorityEmail, reportID, dataURI string) error {
	if !photo.IsImageDataURI(dataURI) {
		return models.NewValidationError("photo", "photo must be an image")
	}
	s.mu.Lock()
	s.staged[stagedKey(authorityEmail, reportID)] = dataURI
	s.mu.Unlock()
	return nil
}

// HasStagedPhoto reports whether a resolution photo is waiting for reportID
func (s *ManagementService) HasStagedPhoto(authorityEmail, reportID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.staged[stagedKey(authorityEmail, reportID)]
	return ok
}

// MarkInProgress moves a report to In Progress
func (s *ManagementService) MarkInProgress(ctx context.Context, reportID string) error {
	report, err := findReport(ctx, s.backend, reportID)
	if err != nil {
		return err
	}
	if !report.Status.CanTransitionTo(models.StatusInProgress) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, report.Status, models.StatusInProgress)
	}
	if err := s.backend.UpdateReport(ctx, reportID, &models.ReportUpdate{Status: models.StatusInProgress}); err != nil {
		return err
	}
	log.WithField("id", reportID).Info("[management] report marked in progress")
	refresh(ctx, s.refresher)
	return nil
}

// Resolve sends the draft and the staged photo in one update and marks the
// report Resolved. Without a staged photo nothing is sent.
func (s *ManagementService) Resolve(ctx context.Context, authorityEmail, reportID string) error {
	key := stagedKey(authorityEmail, reportID)
	s.mu.Lock()
	pic, ok := s.staged[key]
	s.mu.Unlock()
	if !ok {
		return models.ErrNoResolutionPhoto
	}

	report, err := findReport(ctx, s.backend, reportID)
	if err != nil {
		return err
	}
	if !report.Status.CanTransitionTo(models.StatusResolved) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, report.Status, models.StatusResolved)
	}

	drafts, err := s.drafts.GetDrafts(ctx, authorityEmail)
	if err != nil {
		return err
	}
	d := drafts[reportID]

	update := ResolutionUpdate(d, pic)
	if err := s.backend.UpdateReport(ctx, reportID, update); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.staged, key)
	s.mu.Unlock()
	if err := s.drafts.ClearDraft(ctx, authorityEmail, reportID); err != nil {
		log.WithField("id", reportID).Warnf("[management] failed to clear draft: %v", err)
	}

	log.WithFields(log.Fields{"id": reportID, "authority": authorityEmail}).Info("[management] report resolved")
	refresh(ctx, s.refresher)
	return nil
}

// ResolutionUpdate builds the single resolve update from a draft and a photo
func ResolutionUpdate(d models.Draft, resolvedPic string) *models.ReportUpdate {
	scheduleTime := d.ScheduleTime
	if scheduleTime == "" {
		scheduleTime = "00:00"
	}
	comment := d.Comment
	days := d.EstimatedDays
	return &models.ReportUpdate{
		Status:        models.StatusResolved,
		Comment:       &comment,
		ScheduledAt:   d.ScheduleDate + " " + scheduleTime,
		EstimatedDays: &days,
		ResolvedPic:   resolvedPic,
	}
}
