package service

import (
	"context"
	"spotnsort/geocode"
	"spotnsort/models"
)

// ReportBackend is the remote report collaborator. *apiclient.Client satisfies it.
type ReportBackend interface {
	ListReports(ctx context.Context) ([]models.Report, error)
	CreateReport(ctx context.Context, report *models.NewReport) (*models.Report, error)
	UpdateReport(ctx context.Context, id string, update *models.ReportUpdate) error
	UpdateRating(ctx context.Context, id string, rating int) error
}

// AuthBackend is the remote auth collaborator. *apiclient.Client satisfies it.
type AuthBackend interface {
	Register(ctx context.Context, user *models.User) (*models.User, error)
	Login(ctx context.Context, creds *models.Credentials) (*models.User, error)
}

// Geocoder resolves a free-text area to coordinates
type Geocoder interface {
	Forward(ctx context.Context, query string) (*geocode.Result, error)
}

// Refresher is told to re-fetch the report feed after a mutation
type Refresher interface {
	Refresh(ctx context.Context)
}

func refresh(ctx context.Context, r Refresher) {
	if r != nil {
		r.Refresh(ctx)
	}
}

// findReport fetches the collection and returns the report with the given id
func findReport(ctx context.Context, backend ReportBackend, id string) (*models.Report, error) {
	reports, err := backend.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i], nil
		}
	}
	return nil, models.ErrNotFound
}
