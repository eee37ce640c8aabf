package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"spotnsort/models"
)

// ListReports fetches every report (GET /reports)
func (c *Client) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.do(ctx, "list_reports", http.MethodGet, "/reports", nil, &reports); err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

// CreateReport posts a new report (POST /reports). There is no idempotency key:
// repeating the call after a network failure may create a duplicate.
func (c *Client) CreateReport(ctx context.Context, report *models.NewReport) (*models.Report, error) {
	created := &models.Report{}
	if err := c.do(ctx, "create_report", http.MethodPost, "/reports", report, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateReport sends a partial update (PUT /reports/{id}). Last writer wins.
func (c *Client) UpdateReport(ctx context.Context, id string, update *models.ReportUpdate) error {
	if id == "" {
		return models.NewValidationError("id", "report id is required")
	}
	return c.do(ctx, "update_report", http.MethodPut, "/reports/"+url.PathEscape(id), update, nil)
}

// UpdateRating sets the citizen rating (PUT /reports/{id}/rating); rating must be 1..5
func (c *Client) UpdateRating(ctx context.Context, id string, rating int) error {
	if id == "" {
		return models.NewValidationError("id", "report id is required")
	}
	if rating < 1 || rating > 5 {
		return models.NewValidationError("rating", "rating must be between 1 and 5")
	}
	return c.do(ctx, "update_rating", http.MethodPut, "/reports/"+url.PathEscape(id)+"/rating",
		&models.RatingRequest{Rating: rating}, nil)
}
