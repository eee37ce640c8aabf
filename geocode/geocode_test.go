package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"spotnsort/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "Banjara Hills, Hyderabad", r.URL.Query().Get("q"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"lat":"17.4156","lon":"78.4347","display_name":"Banjara Hills"}]`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, "test-agent", 0, time.Second)
	res, err := g.Forward(context.Background(), "  Banjara Hills, Hyderabad ")
	require.NoError(t, err)
	assert.InDelta(t, 17.4156, res.Lat, 1e-9)
	assert.InDelta(t, 78.4347, res.Lng, 1e-9)
	assert.Equal(t, "Banjara Hills", res.DisplayName)
}

func TestForwardNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewGeocoder(srv.URL, "ua", 0, time.Second).Forward(context.Background(), "zzzz")
	assert.ErrorIs(t, err, models.ErrNoGeocodeMatch)
}

func TestForwardServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGeocoder(srv.URL, "ua", 0, time.Second).Forward(context.Background(), "Hyderabad")
	var netErr *models.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusTooManyRequests, netErr.StatusCode)
}

func TestForwardEmptyQuery(t *testing.T) {
	_, err := NewGeocoder("http://unused", "ua", 0, time.Second).Forward(context.Background(), "   ")
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestForwardThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"1","lon":"2"}]`))
	}))
	defer srv.Close()

	// One request per minute: the second lookup cannot get a token before its deadline.
	g := NewGeocoder(srv.URL, "ua", 1.0/60, 50*time.Millisecond)
	_, err := g.Forward(context.Background(), "first")
	require.NoError(t, err)

	_, err = g.Forward(context.Background(), "second")
	var netErr *models.NetworkError
	assert.True(t, errors.As(err, &netErr))
}
