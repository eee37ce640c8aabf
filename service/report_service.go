package service

import (
	"context"
	"fmt"
	"spotnsort/models"
	"strings"

	"github.com/apex/log"
)

// ReportService serves the citizen's own views of the report collection
type ReportService struct {
	backend   ReportBackend
	refresher Refresher
}

// NewReportService creates a new report service. refresher may be nil.
func NewReportService(backend ReportBackend, refresher Refresher) *ReportService {
	return &ReportService{backend: backend, refresher: refresher}
}

// OwnedBy keeps the reports submitted by email
func OwnedBy(reports []models.Report, email string) []models.Report {
	out := make([]models.Report, 0)
	for _, r := range reports {
		if strings.EqualFold(r.UserEmail, email) {
			out = append(out, r)
		}
	}
	return out
}

// MyReports returns the reports submitted by email
func (s *ReportService) MyReports(ctx context.Context, email string) ([]models.Report, error) {
	all, err := s.backend.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return OwnedBy(all, email), nil
}

// Summary counts reports by status
func (s *ReportService) Summary(reports []models.Report) models.StatusCounts {
	return models.CountStatuses(reports)
}

// Rewards computes the rewards view for email
func (s *ReportService) Rewards(ctx context.Context, email string) (*Rewards, error) {
	mine, err := s.MyReports(ctx, email)
	if err != nil {
		return nil, err
	}
	return ComputeRewards(mine), nil
}

// Rate records the citizen's rating of a resolved report they submitted
func (s *ReportService) Rate(ctx context.Context, email, reportID string, rating int) error {
	if rating < 1 || rating > 5 {
		return models.NewValidationError("rating", "rating must be between 1 and 5")
	}
	report, err := findReport(ctx, s.backend, reportID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(report.UserEmail, email) {
		return fmt.Errorf("%w: %s", models.ErrNotOwner, reportID)
	}
	if report.Status != models.StatusResolved {
		return models.ErrNotResolved
	}
	if err := s.backend.UpdateRating(ctx, reportID, rating); err != nil {
		return err
	}
	log.WithFields(log.Fields{"id": reportID, "rating": rating}).Info("[reports] report rated")
	refresh(ctx, s.refresher)
	return nil
}
