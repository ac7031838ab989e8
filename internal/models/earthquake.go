package models

import "time"

// Alert levels follow the USGS PAGER color scale.
type AlertLevel string

const (
	AlertGreen  AlertLevel = "green"
	AlertYellow AlertLevel = "yellow"
	AlertOrange AlertLevel = "orange"
	AlertRed    AlertLevel = "red"
)

// Earthquake is the canonical record both upstream feeds normalize into.
type Earthquake struct {
	ID            string  // source-assigned, or synthesized when the feed has none
	Place         string  // free-text location description
	Time          int64   // occurrence time, epoch milliseconds UTC
	Magnitude     float64 // >= 0
	MagnitudeType string  // e.g. "mb", "ml", "mww"
	Status        string  // "reviewed", "automatic", ...
	Tsunami       bool
	Depth         float64 // kilometers
	Longitude     float64 // (0,0) means coordinates unknown
	Latitude      float64
	Source        string // originating network code, e.g. "us", "tmd"

	URL   string     // canonical event page, optional
	Felt  *int       // felt-report count, nil when unreported
	CDI   *float64   // community-determined intensity
	MMI   *float64   // modified Mercalli intensity
	Alert AlertLevel // empty when no PAGER alert was issued
}

// OccurredAt returns the event time as a time.Time in UTC.
func (e *Earthquake) OccurredAt() time.Time {
	return time.UnixMilli(e.Time).UTC()
}

type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// RegionStatistics aggregates earthquakes around a point over a trailing window.
type RegionStatistics struct {
	Count          int     // earthquakes in the full window
	MaxMagnitude   float64 // largest magnitude observed
	RecentActivity float64 // earthquakes per day over the trailing 30 days
}
