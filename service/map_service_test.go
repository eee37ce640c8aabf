package service

import (
	"context"
	"encoding/json"
	"spotnsort/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeatureCollection(t *testing.T) {
	reports := append(sampleReports(),
		models.Report{ID: "far", Problem: "Garbage", Status: models.StatusPending, Lat: floatPtr(28.6139), Lng: floatPtr(77.2090)},
	)
	fc := BuildFeatureCollection(reports, MapQuery{})

	// p3 has no coordinates; "far" is outside Telangana
	require.Len(t, fc.Features, 3)
	colors := map[interface{}]interface{}{}
	for _, f := range fc.Features {
		colors[f.ID] = f.Properties["color"]
	}
	assert.Equal(t, "red", colors["p1"])
	assert.Equal(t, "red", colors["p2"])
	assert.Equal(t, "green", colors["r1"])

	p1 := fc.Features[0]
	assert.Equal(t, []float64{78.4347, 17.4156}, p1.Geometry.Point)
}

func TestBuildFeatureCollectionProblemAndBounds(t *testing.T) {
	fc := BuildFeatureCollection(sampleReports(), MapQuery{Problem: "potholes"})
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "r1", fc.Features[0].ID)

	hyderabad := &Bounds{South: 17.2, West: 78.2, North: 17.6, East: 78.7}
	fc = BuildFeatureCollection(sampleReports(), MapQuery{Bounds: hyderabad})
	assert.Len(t, fc.Features, 2)
}

func TestMarkersJSON(t *testing.T) {
	svc := NewMapService(newFakeBackend(sampleReports()...))
	fc, err := svc.Markers(context.Background(), MapQuery{})
	require.NoError(t, err)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "FeatureCollection", decoded["type"])
}
