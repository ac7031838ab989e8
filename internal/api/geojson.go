package api

import (
	"github.com/nattawatp/quakewatch/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toFeature(eq models.Earthquake) Feature {
	props := map[string]any{
		"id":             eq.ID,
		"place":          eq.Place,
		"time":           eq.Time,
		"magnitude":      eq.Magnitude,
		"magnitude_type": eq.MagnitudeType,
		"status":         eq.Status,
		"tsunami":        eq.Tsunami,
		"depth":          eq.Depth,
		"source":         eq.Source,
	}
	if eq.URL != "" {
		props["url"] = eq.URL
	}
	if eq.Alert != "" {
		props["alert"] = string(eq.Alert)
	}
	if eq.Felt != nil {
		props["felt"] = *eq.Felt
	}
	if eq.CDI != nil {
		props["cdi"] = *eq.CDI
	}
	if eq.MMI != nil {
		props["mmi"] = *eq.MMI
	}

	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{eq.Longitude, eq.Latitude},
		},
		Properties: props,
	}
}

func toGeoJSON(records []models.Earthquake) FeatureCollection {
	features := make([]Feature, 0, len(records))
	for _, eq := range records {
		features = append(features, toFeature(eq))
	}
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
