// Package geocode resolves free-text areas to coordinates through a public
// Nominatim-compatible search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"spotnsort/metrics"
	"spotnsort/models"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"golang.org/x/time/rate"
)

// Result is one geocoding match
type Result struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName"`
}

// Geocoder is a throttled forward-geocoding client. The public service allows
// about one request per second, so every lookup waits on a shared limiter.
type Geocoder struct {
	searchURL  string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewGeocoder creates a geocoder. ratePerSecond <= 0 disables throttling.
func NewGeocoder(searchURL, userAgent string, ratePerSecond float64, timeout time.Duration) *Geocoder {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &Geocoder{
		searchURL:  searchURL,
		userAgent:  userAgent,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    timeout,
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward returns the best match for query, or models.ErrNoGeocodeMatch
func (g *Geocoder) Forward(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("area", "area is required")
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.limiter.Wait(ctx); err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("throttled").Inc()
		return nil, &models.NetworkError{Op: "geocode", Err: err}
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &models.NetworkError{Op: "geocode", Err: err}
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		log.Warnf("[geocode] lookup for %q failed: %v", query, err)
		return nil, &models.NetworkError{Op: "geocode", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return nil, &models.NetworkError{Op: "geocode", StatusCode: resp.StatusCode}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return nil, &models.NetworkError{Op: "geocode", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(places) == 0 {
		metrics.GeocodeRequestsTotal.WithLabelValues("no_match").Inc()
		return nil, models.ErrNoGeocodeMatch
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLng != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("no_match").Inc()
		return nil, models.ErrNoGeocodeMatch
	}

	metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()
	return &Result{Lat: lat, Lng: lng, DisplayName: places[0].DisplayName}, nil
}
