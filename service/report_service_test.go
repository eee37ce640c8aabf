package service

import (
	"context"
	"errors"
	"spotnsort/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func citizenReports() []models.Report {
	return []models.Report{
		{ID: "a1", UserEmail: "asha@mail.com", Problem: "Garbage", Priority: models.PriorityHigh, Status: models.StatusResolved},
		{ID: "a2", UserEmail: "ASHA@mail.com", Problem: "Trees", Priority: models.PriorityLow, Status: models.StatusInProgress},
		{ID: "b1", UserEmail: "ravi@mail.com", Problem: "Potholes", Status: models.StatusResolved},
	}
}

func TestMyReportsAndSummary(t *testing.T) {
	svc := NewReportService(newFakeBackend(citizenReports()...), nil)
	mine, err := svc.MyReports(context.Background(), "asha@mail.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	assert.Equal(t, models.StatusCounts{Total: 2, InProgress: 1, Resolved: 1, Pending: 0}, svc.Summary(mine))
}

func TestRewardsForCitizen(t *testing.T) {
	svc := NewReportService(newFakeBackend(citizenReports()...), nil)
	r, err := svc.Rewards(context.Background(), "asha@mail.com")
	require.NoError(t, err)
	assert.Equal(t, 30, r.Points)
}

func TestRate(t *testing.T) {
	backend := newFakeBackend(citizenReports()...)
	refresher := &countingRefresher{}
	svc := NewReportService(backend, refresher)

	require.NoError(t, svc.Rate(context.Background(), "asha@mail.com", "a1", 4))
	assert.Equal(t, 4, backend.ratings["a1"])
	assert.Equal(t, 1, refresher.Count())
}

func TestRateRules(t *testing.T) {
	backend := newFakeBackend(citizenReports()...)
	svc := NewReportService(backend, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Rate(ctx, "asha@mail.com", "a2", 5), models.ErrNotResolved)
	assert.ErrorIs(t, svc.Rate(ctx, "asha@mail.com", "zz", 5), models.ErrNotFound)

	assert.ErrorIs(t, svc.Rate(ctx, "asha@mail.com", "b1", 5), models.ErrNotOwner)

	var vErr *models.ValidationError
	assert.True(t, errors.As(svc.Rate(ctx, "asha@mail.com", "a1", 0), &vErr))
	assert.True(t, errors.As(svc.Rate(ctx, "asha@mail.com", "a1", 6), &vErr))

	assert.Empty(t, backend.ratings)
}
