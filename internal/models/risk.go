package models

// SignificantEvent is one of the largest recent earthquakes shown in an assessment.
type SignificantEvent struct {
	Date      string  `json:"date"`
	Magnitude float64 `json:"magnitude"`
	Location  string  `json:"location"`
	Impact    string  `json:"impact"`
}

// RiskAssessment is the composite seismic risk result for a location.
// All factor scores are integers in [0,100].
type RiskAssessment struct {
	OverallRisk           int                `json:"overallRisk"`
	FaultLineProximity    int                `json:"faultLineProximity"`
	HistoricalActivity    int                `json:"historicalActivity"`
	BuildingVulnerability int                `json:"buildingVulnerability"`
	PopulationDensity     int                `json:"populationDensity"`
	HistoricalSummary     string             `json:"historicalSummary"`
	SignificantEvents     []SignificantEvent `json:"significantEvents"`
	Recommendations       []string           `json:"recommendations"`
	Disclaimer            string             `json:"disclaimer"`
}
