package service

import (
	"context"
	"spotnsort/models"
	"strings"

	"github.com/golang/geo/s2"
	geojson "github.com/paulmach/go.geojson"
)

const (
	markerResolved = "green"
	markerOpen     = "red"
)

// Bounds is a lat/lng rectangle given by its south-west and north-east corners
type Bounds struct {
	South float64
	West  float64
	North float64
	East  float64
}

// DefaultBounds covers Telangana
var DefaultBounds = Bounds{South: 15.895, West: 77.156, North: 19.458, East: 81.676}

func (b Bounds) rect() s2.Rect {
	r := s2.RectFromLatLng(s2.LatLngFromDegrees(b.South, b.West))
	return r.AddPoint(s2.LatLngFromDegrees(b.North, b.East))
}

// MapQuery selects which reports appear on the map
type MapQuery struct {
	Problem string
	Bounds  *Bounds
}

// MapService renders reports as GeoJSON markers
type MapService struct {
	backend ReportBackend
}

// NewMapService creates a new map service
func NewMapService(backend ReportBackend) *MapService {
	return &MapService{backend: backend}
}

// Markers fetches all reports and renders the ones matching q
func (s *MapService) Markers(ctx context.Context, q MapQuery) (*geojson.FeatureCollection, error) {
	reports, err := s.backend.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return BuildFeatureCollection(reports, q), nil
}

// BuildFeatureCollection turns located reports into point features colored by status.
// Reports without coordinates or outside the bounds are skipped.
func BuildFeatureCollection(reports []models.Report, q MapQuery) *geojson.FeatureCollection {
	bounds := DefaultBounds
	if q.Bounds != nil {
		bounds = *q.Bounds
	}
	rect := bounds.rect()

	fc := geojson.NewFeatureCollection()
	for _, r := range reports {
		if !r.HasLocation() {
			continue
		}
		if q.Problem != "" && !strings.EqualFold(r.Problem, q.Problem) {
			continue
		}
		if !rect.ContainsLatLng(s2.LatLngFromDegrees(*r.Lat, *r.Lng)) {
			continue
		}

		// GeoJSON positions are [lng, lat]
		f := geojson.NewPointFeature([]float64{*r.Lng, *r.Lat})
		f.ID = r.ID
		f.SetProperty("problem", r.Problem)
		f.SetProperty("subtype", r.Subtype)
		f.SetProperty("description", r.Description)
		f.SetProperty("status", string(r.Status))
		f.SetProperty("area", r.Area)
		f.SetProperty("color", markerColor(r.Status))
		fc.AddFeature(f)
	}
	return fc
}

func markerColor(status models.ReportStatus) string {
	if status == models.StatusResolved {
		return markerResolved
	}
	return markerOpen
}
