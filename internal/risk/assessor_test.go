package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattawatp/quakewatch/internal/models"
)

type fakeProvider struct {
	stats     models.RegionStatistics
	statsErr  error
	events    []models.Earthquake
	eventsErr error

	gotRadius float64
	gotWindow int
}

func (f *fakeProvider) RegionStatistics(ctx context.Context, point models.GeoPoint, radiusKm float64, windowDays int) (models.RegionStatistics, error) {
	f.gotRadius = radiusKm
	f.gotWindow = windowDays
	return f.stats, f.statsErr
}

func (f *fakeProvider) SignificantEvents(ctx context.Context, point models.GeoPoint, radiusKm float64, windowDays int, minMagnitude float64) ([]models.Earthquake, error) {
	return f.events, f.eventsErr
}

func intPtr(v int) *int { return &v }

func TestAssess_Deterministic(t *testing.T) {
	provider := &fakeProvider{
		stats: models.RegionStatistics{Count: 50, MaxMagnitude: 5.2, RecentActivity: 0.8},
		events: []models.Earthquake{
			{ID: "e1", Place: "near Osaka, Japan", Magnitude: 5.2,
				Time: time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC).UnixMilli(), Felt: intPtr(1200)},
			{ID: "e2", Place: "near Kobe, Japan", Magnitude: 4.4,
				Time: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC).UnixMilli()},
		},
	}
	assessor := NewAssessor(provider, 0, 0)

	// Inside the Japan building-code box, far from any population center.
	got := assessor.Assess(context.Background(), models.GeoPoint{Latitude: 34.0, Longitude: 135.0})

	assert.Equal(t, 74, got.FaultLineProximity)
	assert.Equal(t, 50, got.HistoricalActivity)
	assert.Equal(t, 35, got.BuildingVulnerability)
	assert.Equal(t, 40, got.PopulationDensity)
	assert.Equal(t, 52, got.OverallRisk)

	assert.Equal(t, float64(500), provider.gotRadius, "default radius")
	assert.Equal(t, 365, provider.gotWindow, "default window")

	assert.Contains(t, got.HistoricalSummary, "high seismic activity")
	assert.Contains(t, got.HistoricalSummary, "significant M5.2 event")
	assert.Contains(t, got.HistoricalSummary, "Recent activity has been moderate")
	assert.Contains(t, got.HistoricalSummary, "2 of these were significant events")

	require.Len(t, got.SignificantEvents, 2)
	assert.Equal(t, "January 15, 2024", got.SignificantEvents[0].Date)
	assert.Equal(t, 5.2, got.SignificantEvents[0].Magnitude)
	assert.Equal(t, "1200 people reported feeling this earthquake", got.SignificantEvents[0].Impact)
	assert.Equal(t, "No impact data available", got.SignificantEvents[1].Impact)

	assert.Equal(t, Disclaimer, got.Disclaimer)
	// 52 crosses the 25 and 50 tiers: baseline 4 + 2 + 2.
	assert.Len(t, got.Recommendations, 8)
}

func TestAssess_SignificantEventsCappedAtThree(t *testing.T) {
	provider := &fakeProvider{
		stats: models.RegionStatistics{Count: 10, MaxMagnitude: 6.5},
		events: []models.Earthquake{
			{ID: "a", Magnitude: 4.1},
			{ID: "b", Magnitude: 6.5},
			{ID: "c", Magnitude: 5.0},
			{ID: "d", Magnitude: 4.8},
		},
	}
	assessor := NewAssessor(provider, 500, 365)

	got := assessor.Assess(context.Background(), models.GeoPoint{})

	require.Len(t, got.SignificantEvents, 3)
	assert.Equal(t, 6.5, got.SignificantEvents[0].Magnitude, "largest first")
	assert.Equal(t, 5.0, got.SignificantEvents[1].Magnitude)
	assert.Equal(t, 4.8, got.SignificantEvents[2].Magnitude)
}

func TestAssess_QuietRegion(t *testing.T) {
	provider := &fakeProvider{}
	assessor := NewAssessor(provider, 500, 365)

	got := assessor.Assess(context.Background(), models.GeoPoint{Latitude: 0, Longitude: -30})

	assert.Equal(t, 0, got.FaultLineProximity)
	assert.Equal(t, 0, got.HistoricalActivity)
	assert.Contains(t, got.HistoricalSummary, "has not experienced any significant earthquakes")
	assert.Empty(t, got.SignificantEvents)
}

func TestAssess_StatsFailureDegrades(t *testing.T) {
	provider := &fakeProvider{statsErr: errors.New("upstream down")}
	assessor := NewAssessor(provider, 500, 365)

	got := assessor.Assess(context.Background(), models.GeoPoint{Latitude: 13.75, Longitude: 100.5})

	assert.Equal(t, 0, got.OverallRisk)
	assert.Equal(t, 0, got.FaultLineProximity)
	assert.Equal(t, 0, got.HistoricalActivity)
	assert.Equal(t, 0, got.BuildingVulnerability)
	assert.Equal(t, 0, got.PopulationDensity)
	assert.Equal(t, UnableToAssessSummary, got.HistoricalSummary)
	assert.Empty(t, got.SignificantEvents)
	require.GreaterOrEqual(t, len(got.Recommendations), 4, "baseline list survives failures")
	assert.Equal(t, Disclaimer, got.Disclaimer)
}

func TestAssess_EventsFailureDegrades(t *testing.T) {
	provider := &fakeProvider{
		stats:     models.RegionStatistics{Count: 50, MaxMagnitude: 5.2},
		eventsErr: errors.New("upstream down"),
	}
	assessor := NewAssessor(provider, 500, 365)

	got := assessor.Assess(context.Background(), models.GeoPoint{})

	assert.Equal(t, 0, got.OverallRisk)
	assert.Equal(t, UnableToAssessSummary, got.HistoricalSummary)
}

func TestRecommendations_TiersAreSupersets(t *testing.T) {
	low := recommendations(10)
	elevated := recommendations(30)
	high := recommendations(60)
	severe := recommendations(90)

	assert.Len(t, low, 4)
	assert.Len(t, elevated, 6)
	assert.Len(t, high, 8)
	assert.Len(t, severe, 11)

	assert.Equal(t, low, elevated[:4], "each tier appends, never removes")
	assert.Equal(t, elevated, high[:6])
	assert.Equal(t, high, severe[:8])
}

func TestRecommendations_Boundaries(t *testing.T) {
	assert.Len(t, recommendations(24), 4)
	assert.Len(t, recommendations(25), 6)
	assert.Len(t, recommendations(49), 6)
	assert.Len(t, recommendations(50), 8)
	assert.Len(t, recommendations(74), 8)
	assert.Len(t, recommendations(75), 11)
}

func TestActivityBands(t *testing.T) {
	assert.Equal(t, "very low", activityBand(4))
	assert.Equal(t, "low", activityBand(5))
	assert.Equal(t, "moderate", activityBand(20))
	assert.Equal(t, "high", activityBand(50))
	assert.Equal(t, "very high", activityBand(100))

	assert.Equal(t, "minor", magnitudeBand(3.9))
	assert.Equal(t, "moderate", magnitudeBand(4))
	assert.Equal(t, "significant", magnitudeBand(5))
	assert.Equal(t, "major", magnitudeBand(6))

	assert.Equal(t, "very low", recentActivityBand(0.05))
	assert.Equal(t, "low", recentActivityBand(0.1))
	assert.Equal(t, "moderate", recentActivityBand(0.5))
	assert.Equal(t, "high", recentActivityBand(1))
	assert.Equal(t, "very high", recentActivityBand(2))
}
