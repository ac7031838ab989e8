package risk

import "math"

// Factor calculators for the composite risk score. Each returns an integer
// clamped to [0,100].
//
// Count and magnitude terms are combined on different scales on purpose:
// counts are compressed through log10 so high-seismicity regions cannot
// saturate a factor on frequency alone, while magnitude enters linearly
// because the Richter scale is already logarithmic in released energy.

// FaultLineProximity scores how close a region behaves to an active fault,
// using observed frequency and peak magnitude as proxies.
func FaultLineProximity(count int, maxMagnitude float64) int {
	countTerm := math.Min(60, math.Log10(float64(count)+1)*20)
	magTerm := math.Min(40, maxMagnitude*8)
	return clamp(countTerm + magTerm)
}

// HistoricalActivity scores long-run seismicity, weighting the trailing
// 30-day rate most heavily as the stronger forward-looking signal.
func HistoricalActivity(count int, recentActivity float64) int {
	countTerm := math.Min(40, math.Log10(float64(count)+1)*15)
	recentTerm := math.Min(60, recentActivity*30)
	return clamp(countTerm + recentTerm)
}

// BuildingVulnerability scales a magnitude-driven base by the building-code
// region factor for the point.
func BuildingVulnerability(lat, lng, maxMagnitude float64) int {
	base := math.Min(50, maxMagnitude*10)
	return clamp(base * regionFactor(lat, lng))
}

// PopulationDensity estimates exposure from proximity to known population
// centers. Points inside a city's radius take the city's density; points
// within two degrees get a linear falloff that never lowers the running
// maximum; everywhere else scores the global default of 40.
func PopulationDensity(lat, lng float64) int {
	density := 40.0
	for _, city := range populationCenters {
		dLat := lat - city.lat
		dLng := lng - city.lng
		dist := math.Sqrt(dLat*dLat + dLng*dLng)

		switch {
		case dist <= city.radius:
			density = math.Max(density, city.density)
		case dist <= 2:
			density = math.Max(density, city.density-(dist-city.radius)*15)
		}
	}
	return clamp(density)
}

// OverallRisk combines the four factors with fixed weights.
func OverallRisk(faultLine, historical, building, population int) int {
	weighted := 0.3*float64(faultLine) + 0.3*float64(historical) +
		0.2*float64(building) + 0.2*float64(population)
	return clamp(weighted)
}

func clamp(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
