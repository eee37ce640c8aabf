package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"spotnsort/geocode"
	"spotnsort/models"
	"spotnsort/photo"
	"spotnsort/repository"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	reports  []models.Report
	listErr  error
	writeErr error
	created  []*models.NewReport
	updates  map[string][]*models.ReportUpdate
	ratings  map[string]int
	lists    int
}

func newFakeBackend(reports ...models.Report) *fakeBackend {
	return &fakeBackend{
		reports: reports,
		updates: make(map[string][]*models.ReportUpdate),
		ratings: make(map[string]int),
	}
}

func (f *fakeBackend) ListReports(context.Context) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Report, len(f.reports))
	copy(out, f.reports)
	return out, nil
}

func (f *fakeBackend) CreateReport(_ context.Context, r *models.NewReport) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.created = append(f.created, r)
	return &models.Report{ID: "created-1", Status: models.StatusPending, Problem: r.Problem}, nil
}

func (f *fakeBackend) UpdateReport(_ context.Context, id string, u *models.ReportUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates[id] = append(f.updates[id], u)
	return nil
}

func (f *fakeBackend) UpdateRating(_ context.Context, id string, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.ratings[id] = rating
	return nil
}

type fakeGeocoder struct {
	result *geocode.Result
	err    error
	calls  int
}

func (g *fakeGeocoder) Forward(_ context.Context, query string) (*geocode.Result, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type countingRefresher struct {
	mu    sync.Mutex
	count int
}

func (r *countingRefresher) Refresh(context.Context) {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

func (r *countingRefresher) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func newTestStore(t *testing.T) repository.KVStore {
	t.Helper()
	store, err := repository.NewFileKVStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	return store
}

func testPhotoURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return photo.EncodeDataURI("image/png", buf.Bytes())
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
