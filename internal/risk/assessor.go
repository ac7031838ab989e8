// Package risk computes the heuristic seismic risk assessment: four factor
// scores combined into a weighted 0-100 composite, plus a generated
// narrative and preparedness recommendations.
package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nattawatp/quakewatch/internal/models"
)

// StatsProvider supplies the aggregated earthquake data an assessment is
// built from. The fetch layer implements it against USGS.
type StatsProvider interface {
	RegionStatistics(ctx context.Context, point models.GeoPoint, radiusKm float64, windowDays int) (models.RegionStatistics, error)
	SignificantEvents(ctx context.Context, point models.GeoPoint, radiusKm float64, windowDays int, minMagnitude float64) ([]models.Earthquake, error)
}

const (
	defaultRadiusKm   = 500
	defaultWindowDays = 365
)

type Assessor struct {
	provider   StatsProvider
	radiusKm   float64
	windowDays int
}

func NewAssessor(provider StatsProvider, radiusKm float64, windowDays int) *Assessor {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	return &Assessor{
		provider:   provider,
		radiusKm:   radiusKm,
		windowDays: windowDays,
	}
}

// Assess produces the risk assessment for a point. Provider failures
// degrade to the zero assessment instead of propagating: the caller always
// gets a well-formed result.
func (a *Assessor) Assess(ctx context.Context, point models.GeoPoint) models.RiskAssessment {
	stats, err := a.provider.RegionStatistics(ctx, point, a.radiusKm, a.windowDays)
	if err != nil {
		slog.Error("risk assessment: statistics fetch failed", "lat", point.Latitude, "lng", point.Longitude, "error", err)
		return zeroAssessment()
	}

	events, err := a.provider.SignificantEvents(ctx, point, a.radiusKm, a.windowDays, significantMagnitude)
	if err != nil {
		slog.Error("risk assessment: events fetch failed", "lat", point.Latitude, "lng", point.Longitude, "error", err)
		return zeroAssessment()
	}

	faultLine := FaultLineProximity(stats.Count, stats.MaxMagnitude)
	historical := HistoricalActivity(stats.Count, stats.RecentActivity)
	building := BuildingVulnerability(point.Latitude, point.Longitude, stats.MaxMagnitude)
	population := PopulationDensity(point.Latitude, point.Longitude)
	overall := OverallRisk(faultLine, historical, building, population)

	return models.RiskAssessment{
		OverallRisk:           overall,
		FaultLineProximity:    faultLine,
		HistoricalActivity:    historical,
		BuildingVulnerability: building,
		PopulationDensity:     population,
		HistoricalSummary:     historicalSummary(stats, events),
		SignificantEvents:     significantEvents(events),
		Recommendations:       recommendations(overall),
		Disclaimer:            Disclaimer,
	}
}

// significantEvents picks the three largest-magnitude events and formats
// them for display.
func significantEvents(events []models.Earthquake) []models.SignificantEvent {
	sorted := make([]models.Earthquake, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Magnitude > sorted[j].Magnitude
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	out := make([]models.SignificantEvent, 0, len(sorted))
	for _, eq := range sorted {
		impact := "No impact data available"
		if eq.Felt != nil && *eq.Felt > 0 {
			impact = fmtFelt(*eq.Felt)
		}
		out = append(out, models.SignificantEvent{
			Date:      time.UnixMilli(eq.Time).UTC().Format("January 2, 2006"),
			Magnitude: eq.Magnitude,
			Location:  eq.Place,
			Impact:    impact,
		})
	}
	return out
}

func fmtFelt(felt int) string {
	if felt == 1 {
		return "1 person reported feeling this earthquake"
	}
	return fmt.Sprintf("%d people reported feeling this earthquake", felt)
}

func zeroAssessment() models.RiskAssessment {
	return models.RiskAssessment{
		HistoricalSummary: UnableToAssessSummary,
		SignificantEvents: []models.SignificantEvent{},
		Recommendations:   recommendations(0),
		Disclaimer:        Disclaimer,
	}
}
