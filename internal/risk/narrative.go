package risk

import (
	"fmt"

	"github.com/nattawatp/quakewatch/internal/models"
)

// Disclaimer is attached verbatim to every assessment.
const Disclaimer = "DISCLAIMER: This risk assessment is generated algorithmically based on historical seismic data and geographical factors. It is not an official assessment and should not replace guidance from local meteorological departments or government announcements. Always verify information with official sources before making decisions."

const quietRegionSummary = "This region has not experienced any significant earthquakes in the past year based on available data. However, this does not guarantee future seismic inactivity. Always consult local geological surveys for comprehensive information."

// UnableToAssessSummary is the fixed narrative on the degraded no-data path.
const UnableToAssessSummary = "Unable to assess risk due to insufficient data. Please consult your local meteorological department for accurate information."

// significantMagnitude is the floor for an event to count as significant.
const significantMagnitude = 4.0

func activityBand(count int) string {
	switch {
	case count < 5:
		return "very low"
	case count < 20:
		return "low"
	case count < 50:
		return "moderate"
	case count < 100:
		return "high"
	default:
		return "very high"
	}
}

func magnitudeBand(mag float64) string {
	switch {
	case mag < 4:
		return "minor"
	case mag < 5:
		return "moderate"
	case mag < 6:
		return "significant"
	default:
		return "major"
	}
}

func recentActivityBand(rate float64) string {
	switch {
	case rate < 0.1:
		return "very low"
	case rate < 0.5:
		return "low"
	case rate < 1:
		return "moderate"
	case rate < 2:
		return "high"
	default:
		return "very high"
	}
}

// historicalSummary renders the narrative sentence for a region's statistics
// and its significant-event list.
func historicalSummary(stats models.RegionStatistics, events []models.Earthquake) string {
	if stats.Count == 0 {
		return quietRegionSummary
	}

	significant := 0
	for _, eq := range events {
		if eq.Magnitude >= significantMagnitude {
			significant++
		}
	}

	summary := fmt.Sprintf(
		"Based on USGS data, this region has experienced %s seismic activity in the past year with %d recorded earthquakes. The strongest was a %s M%.1f event. Recent activity has been %s.",
		activityBand(stats.Count), stats.Count,
		magnitudeBand(stats.MaxMagnitude), stats.MaxMagnitude,
		recentActivityBand(stats.RecentActivity),
	)
	if significant > 0 {
		summary += fmt.Sprintf(" %d of these were significant events of magnitude %.1f or greater.", significant, significantMagnitude)
	}
	summary += " This assessment is based solely on historical data and should be verified with local authorities."
	return summary
}

// baselineRecommendations is the preparedness floor returned at every risk
// level, including the degraded no-data path.
var baselineRecommendations = []string{
	"Create an emergency plan with your family or household members",
	"Prepare an emergency kit with essential supplies",
	"Learn first aid and how to respond during and after an earthquake",
	"Stay informed about local earthquake alerts and warnings",
}

var elevatedRecommendations = []string{
	"Secure heavy furniture and appliances to walls",
	"Know the safe spots in each room (under sturdy tables, against interior walls)",
}

var highRecommendations = []string{
	"Identify building weaknesses and fix them if possible",
	"Practice earthquake drills regularly",
}

var severeRecommendations = []string{
	"Consider retrofitting your home for earthquake safety",
	"Have multiple evacuation routes planned",
	"Consider earthquake insurance for your property",
}

// recommendations builds the action list for a risk level. Each tier appends
// to the previous one, so higher levels always return a superset.
func recommendations(riskLevel int) []string {
	recs := make([]string, 0, len(baselineRecommendations)+len(elevatedRecommendations)+len(highRecommendations)+len(severeRecommendations))
	recs = append(recs, baselineRecommendations...)
	if riskLevel >= 25 {
		recs = append(recs, elevatedRecommendations...)
	}
	if riskLevel >= 50 {
		recs = append(recs, highRecommendations...)
	}
	if riskLevel >= 75 {
		recs = append(recs, severeRecommendations...)
	}
	return recs
}
