package main

import (
	"bytes"
	"context"
	"spotnsort/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticBackend struct {
	reports []models.Report
}

func (b *staticBackend) ListReports(context.Context) ([]models.Report, error) {
	return b.reports, nil
}

func (b *staticBackend) CreateReport(context.Context, *models.NewReport) (*models.Report, error) {
	return nil, nil
}

func (b *staticBackend) UpdateReport(context.Context, string, *models.ReportUpdate) error {
	return nil
}

func (b *staticBackend) UpdateRating(context.Context, string, int) error {
	return nil
}

func fixture() *staticBackend {
	return &staticBackend{reports: []models.Report{
		{ID: "a", UserEmail: "asha@mail.com", Problem: "Garbage", Priority: models.PriorityHigh, Status: models.StatusResolved},
		{ID: "b", UserEmail: "asha@mail.com", Problem: "Garbage", Priority: models.PriorityLow, Status: models.StatusPending},
		{ID: "c", UserEmail: "ravi@mail.com", Problem: "Trees", Status: models.StatusInProgress},
	}}
}

func TestRunStats(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), fixture(), []string{"stats"}, &out))
	assert.Contains(t, out.String(), "total=3 pending=1 in_progress=1 resolved=1")
	assert.Contains(t, out.String(), "Garbage")
}

func TestRunListFiltersStatus(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), fixture(), []string{"list", "Pending"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "b "))
}

func TestRunRewards(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), fixture(), []string{"rewards", "asha@mail.com"}, &out))
	assert.Contains(t, out.String(), "points=30 reports=2/10")
	assert.Contains(t, out.String(), "badge: Resolved Hero")
	assert.Contains(t, out.String(), "[ ] Coffee Voucher (50)")
}

func TestRunUsage(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run(context.Background(), fixture(), nil, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), fixture(), []string{"rewards"}, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), fixture(), []string{"delete"}, &out), errUsage)
}
