package service

import (
	"context"
	"spotnsort/models"
)

// CountEntry is one named bucket of a breakdown
type CountEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Analytics is the authority dashboard data
type Analytics struct {
	Status   []CountEntry        `json:"status"`
	Problems []CountEntry        `json:"problems"`
	Counts   models.StatusCounts `json:"counts"`
}

// AnalyticsService aggregates the whole collection for authorities
type AnalyticsService struct {
	backend ReportBackend
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(backend ReportBackend) *AnalyticsService {
	return &AnalyticsService{backend: backend}
}

// Compute fetches all reports and aggregates them
func (s *AnalyticsService) Compute(ctx context.Context) (*Analytics, error) {
	reports, err := s.backend.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(reports), nil
}

// Aggregate splits reports into Pending (anything not Resolved) and Resolved,
// and counts them per problem in order of first appearance.
func Aggregate(reports []models.Report) *Analytics {
	resolved := 0
	order := []string{}
	perProblem := map[string]int{}
	for _, r := range reports {
		if r.Status == models.StatusResolved {
			resolved++
		}
		if _, seen := perProblem[r.Problem]; !seen {
			order = append(order, r.Problem)
		}
		perProblem[r.Problem]++
	}

	problems := make([]CountEntry, 0, len(order))
	for _, name := range order {
		problems = append(problems, CountEntry{Name: name, Value: perProblem[name]})
	}
	return &Analytics{
		Status: []CountEntry{
			{Name: "Pending", Value: len(reports) - resolved},
			{Name: "Resolved", Value: resolved},
		},
		Problems: problems,
		Counts:   models.CountStatuses(reports),
	}
}
