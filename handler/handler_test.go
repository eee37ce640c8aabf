package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"spotnsort/middleware"
	"spotnsort/models"
	"spotnsort/service"
	"spotnsort/worker"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", models.NewValidationError("phone", "Phone number must be exactly 10 digits."), http.StatusBadRequest, "Phone number must be exactly 10 digits."},
		{"location denied", &models.PermissionError{Resource: "location"}, http.StatusBadRequest, "location permission denied; enter the area manually"},
		{"camera denied", &models.PermissionError{Resource: "camera"}, http.StatusBadRequest, "camera permission denied; pick a photo from your files instead"},
		{"not owner", fmt.Errorf("%w: r9", models.ErrNotOwner), http.StatusForbidden, ""},
		{"not found", fmt.Errorf("lookup: %w", models.ErrNotFound), http.StatusNotFound, ""},
		{"no photo", models.ErrNoResolutionPhoto, http.StatusBadRequest, "Upload a photo first!"},
		{"no geocode match", models.ErrNoGeocodeMatch, http.StatusUnprocessableEntity, ""},
		{"transition", models.ErrInvalidTransition, http.StatusConflict, ""},
		{"duplicate", models.ErrDuplicateSubmission, http.StatusConflict, ""},
		{"credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"submit failed", fmt.Errorf("%w: %w", service.ErrSubmitFailed, &models.NetworkError{Op: "create", StatusCode: 500}), http.StatusBadGateway, service.SubmitFailedMessage},
		{"upstream 4xx", &models.NetworkError{Op: "login", StatusCode: 401, Message: "Invalid email, password, or role"}, http.StatusUnauthorized, "Invalid email, password, or role"},
		{"upstream down", &models.NetworkError{Op: "list", Err: errors.New("dial tcp: refused")}, http.StatusBadGateway, "Failed to reach the report service"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondWithServiceError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)

			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}
}

func TestParseBBox(t *testing.T) {
	b, err := parseBBox("17.2, 78.2, 17.6, 78.7")
	require.NoError(t, err)
	assert.Equal(t, service.Bounds{South: 17.2, West: 78.2, North: 17.6, East: 78.7}, *b)

	for _, in := range []string{"1,2,3", "a,b,c,d", "18,78,17,79"} {
		_, err := parseBBox(in)
		var vErr *models.ValidationError
		assert.True(t, errors.As(err, &vErr), in)
	}
}

func TestParseFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/authority/reports?problem=garbage&area=banjara&lat=17.4&lng=78.4", nil)
	f, err := parseFilter(req)
	require.NoError(t, err)
	assert.Equal(t, "garbage", f.Problem)
	assert.Equal(t, "banjara", f.Query)
	require.NotNil(t, f.Near)
	assert.Equal(t, defaultNearRadiusKm, f.Near.RadiusKm)

	_, err = parseFilter(httptest.NewRequest(http.MethodGet, "/authority/reports?lat=17.4", nil))
	assert.Error(t, err)
	_, err = parseFilter(httptest.NewRequest(http.MethodGet, "/authority/reports?lat=17.4&lng=78.4&radiusKm=-1", nil))
	assert.Error(t, err)
}

func multipartUpload(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "pothole.png")
	require.NoError(t, err)
	part.Write(content)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPhotoUpload(t *testing.T) {
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	rec := httptest.NewRecorder()
	NewPhotoHandler().Upload(rec, multipartUpload(t, img.Bytes()))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp["photo"], "data:image/png;base64,"))

	rec = httptest.NewRecorder()
	NewPhotoHandler().Upload(rec, multipartUpload(t, []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	NewPhotoHandler().Upload(rec, httptest.NewRequest(http.MethodPost, "/photos", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func liveReports() []models.Report {
	return []models.Report{
		{ID: "a", UserEmail: "Asha@Mail.com", Status: models.StatusPending},
		{ID: "b", UserEmail: "asha@mail.com", Status: models.StatusResolved},
		{ID: "c", UserEmail: "ravi@mail.com", Status: models.StatusInProgress},
	}
}

func TestBuildLiveMessage(t *testing.T) {
	snap := worker.Snapshot{Seq: 7, Reports: liveReports()}

	citizen := BuildLiveMessage(snap, &models.User{Role: models.RoleUser, Email: "asha@mail.com"})
	assert.Equal(t, uint64(7), citizen.Seq)
	assert.Equal(t, 2, citizen.Count)
	assert.Equal(t, models.StatusCounts{Total: 2, Pending: 1, Resolved: 1}, citizen.Summary)

	authority := BuildLiveMessage(snap, &models.User{Role: models.RoleAuthority, Email: "o@city.gov"})
	assert.Equal(t, 3, authority.Count)
	assert.Equal(t, 1, authority.Summary.InProgress)
}

type fakeFeed struct {
	mu     sync.Mutex
	latest *worker.Snapshot
	ch     chan worker.Snapshot
}

func (f *fakeFeed) Subscribe() (<-chan worker.Snapshot, func()) {
	return f.ch, func() {}
}

func (f *fakeFeed) Latest() *worker.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

func TestLiveServePushesSnapshots(t *testing.T) {
	feed := &fakeFeed{
		latest: &worker.Snapshot{Seq: 1, Reports: liveReports()},
		ch:     make(chan worker.Snapshot, 1),
	}
	h := NewLiveHandler(feed)
	user := &models.User{Role: models.RoleAuthority, Email: "o@city.gov"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithSession(r.Context(), &service.Session{ID: "sid", User: user})
		h.Serve(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg LiveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "reports", msg.Type)
	assert.Equal(t, uint64(1), msg.Seq)
	assert.Equal(t, 3, msg.Count)

	feed.ch <- worker.Snapshot{Seq: 2, Reports: liveReports()[:1]}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint64(2), msg.Seq)
	assert.Equal(t, 1, msg.Count)
}

func TestLiveServeRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	NewLiveHandler(&fakeFeed{}).Serve(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	prev := maxJSONBodyBytes
	maxJSONBodyBytes = 64
	defer func() { maxJSONBodyBytes = prev }()

	body := `{"photo":"` + strings.Repeat("A", 256) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/authority/reports/p1/photo", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var dst models.PhotoRequest
	err := decodeJSON(rec, req, &dst)
	require.Error(t, err)
	respondWithDecodeError(rec, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	respondWithDecodeError(rec, errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
