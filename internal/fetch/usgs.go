// Package fetch owns the upstream HTTP clients: the USGS FDSN event API and
// the TMD daily seismic-event feed. Payload reshaping lives in
// internal/normalize; this package only does the network legwork.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/normalize"
	"github.com/nattawatp/quakewatch/internal/observability"
)

const (
	// DefaultUSGSBaseURL is the FDSN event service root.
	DefaultUSGSBaseURL = "https://earthquake.usgs.gov/fdsnws/event/1"

	usgsDetailFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/detail"
	usgsEventPageURL  = "https://earthquake.usgs.gov/earthquakes/eventpage"

	requestTimeout = 15 * time.Second
	usgsTimeLayout = "2006-01-02T15:04:05"
)

// USGSClient queries the USGS earthquake APIs and returns canonical records.
type USGSClient struct {
	baseURL       string
	detailFeedURL string
	client        *http.Client
	metrics       *observability.Metrics
}

func NewUSGSClient(baseURL string, metrics *observability.Metrics) *USGSClient {
	if baseURL == "" {
		baseURL = DefaultUSGSBaseURL
	}
	return &USGSClient{
		baseURL:       baseURL,
		detailFeedURL: usgsDetailFeedURL,
		client:        &http.Client{Timeout: requestTimeout},
		metrics:       metrics,
	}
}

// Query holds the optional parameters for RecentEarthquakes.
type Query struct {
	Start        *time.Time
	End          *time.Time
	MinMagnitude *float64
	MaxMagnitude *float64
	Limit        int
	Country      string // applied client-side; USGS has no country parameter
}

// RecentEarthquakes fetches earthquakes for the query window, normalized,
// country-filtered, and sorted newest-first. Defaults: trailing 30 days,
// magnitude >= 2.5, limit 500.
func (c *USGSClient) RecentEarthquakes(ctx context.Context, q Query) ([]models.Earthquake, error) {
	now := clock.Now().UTC()
	start := now.Add(-30 * 24 * time.Hour)
	end := now
	if q.Start != nil {
		start = q.Start.UTC()
	}
	if q.End != nil {
		end = q.End.UTC()
	}
	minMag := 2.5
	if q.MinMagnitude != nil {
		minMag = *q.MinMagnitude
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 500
	}

	params := url.Values{}
	params.Set("format", "geojson")
	params.Set("starttime", start.Format(usgsTimeLayout))
	params.Set("endtime", end.Format(usgsTimeLayout))
	params.Set("minmagnitude", strconv.FormatFloat(minMag, 'f', -1, 64))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("orderby", "time")
	if q.MaxMagnitude != nil {
		params.Set("maxmagnitude", strconv.FormatFloat(*q.MaxMagnitude, 'f', -1, 64))
	}

	features, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	records := make([]models.Earthquake, 0, len(features))
	for _, f := range features {
		records = append(records, normalize.NormalizeUSGS(f))
	}
	records = normalize.Deduplicate(records, normalize.KeyByID)
	records = normalize.FilterByCountryAndDate(records, normalize.Filter{Country: q.Country})
	normalize.SortByTimeDesc(records)
	return records, nil
}

// NearbyEarthquakes fetches earthquakes within radiusKm of a point over the
// trailing window, normalized and deduplicated.
func (c *USGSClient) NearbyEarthquakes(ctx context.Context, point models.GeoPoint, radiusKm float64, days int, minMagnitude float64) ([]models.Earthquake, error) {
	now := clock.Now().UTC()
	start := now.Add(-time.Duration(days) * 24 * time.Hour)

	params := url.Values{}
	params.Set("format", "geojson")
	params.Set("starttime", start.Format(usgsTimeLayout))
	params.Set("endtime", now.Format(usgsTimeLayout))
	params.Set("latitude", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	params.Set("maxradiuskm", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	params.Set("minmagnitude", strconv.FormatFloat(minMagnitude, 'f', -1, 64))
	params.Set("orderby", "time")
	params.Set("limit", "1000")

	features, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	records := make([]models.Earthquake, 0, len(features))
	for _, f := range features {
		records = append(records, normalize.NormalizeUSGS(f))
	}
	return normalize.Deduplicate(records, normalize.KeyByID), nil
}

// RegionStatistics aggregates the full-window count and max magnitude plus
// the trailing 30-day rate for a point. Implements risk.StatsProvider.
func (c *USGSClient) RegionStatistics(ctx context.Context, point models.GeoPoint, radiusKm float64, windowDays int) (models.RegionStatistics, error) {
	yearly, err := c.NearbyEarthquakes(ctx, point, radiusKm, windowDays, 0)
	if err != nil {
		return models.RegionStatistics{}, fmt.Errorf("fetching window earthquakes: %w", err)
	}
	recent, err := c.NearbyEarthquakes(ctx, point, radiusKm, 30, 0)
	if err != nil {
		return models.RegionStatistics{}, fmt.Errorf("fetching recent earthquakes: %w", err)
	}

	var maxMag float64
	for _, eq := range yearly {
		if eq.Magnitude > maxMag {
			maxMag = eq.Magnitude
		}
	}

	return models.RegionStatistics{
		Count:          len(yearly),
		MaxMagnitude:   maxMag,
		RecentActivity: float64(len(recent)) / 30,
	}, nil
}

// SignificantEvents returns the window's earthquakes at or above
// minMagnitude. Implements risk.StatsProvider.
func (c *USGSClient) SignificantEvents(ctx context.Context, point models.GeoPoint, radiusKm float64, windowDays int, minMagnitude float64) ([]models.Earthquake, error) {
	return c.NearbyEarthquakes(ctx, point, radiusKm, windowDays, minMagnitude)
}

// ActiveRegions lists the distinct region names with recent M4.0+
// seismicity, sorted alphabetically. Feeds region filter dropdowns.
func (c *USGSClient) ActiveRegions(ctx context.Context) ([]string, error) {
	minMag := 4.0
	records, err := c.RecentEarthquakes(ctx, Query{MinMagnitude: &minMag, Limit: 500})
	if err != nil {
		return nil, err
	}
	return normalize.ActiveRegions(records), nil
}

func (c *USGSClient) query(ctx context.Context, params url.Values) ([]normalize.USGSFeature, error) {
	start := clock.Now()
	features, err := c.doQuery(ctx, c.baseURL+"/query?"+params.Encode())
	c.metrics.FetchDuration.WithLabelValues("usgs").Observe(clock.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("usgs", "error").Inc()
		return nil, err
	}
	c.metrics.FetchRequests.WithLabelValues("usgs", "success").Inc()
	return features, nil
}

func (c *USGSClient) doQuery(ctx context.Context, fullURL string) ([]normalize.USGSFeature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data normalize.USGSResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return data.Features, nil
}

// EarthquakeByID resolves a single event through an ordered chain of
// strategies, falling back to a synthetic placeholder record. It never
// returns an error: the dashboard always has something to render.
func (c *USGSClient) EarthquakeByID(ctx context.Context, id string) models.Earthquake {
	strategies := []struct {
		name string
		fn   func(context.Context, string) (models.Earthquake, bool)
	}{
		{"direct", c.byIDDirect},
		{"recent", c.byIDRecent},
		{"detail_feed", c.byIDDetailFeed},
	}

	for _, s := range strategies {
		if eq, ok := s.fn(ctx, id); ok {
			return eq
		}
		slog.Debug("event lookup strategy missed", "strategy", s.name, "id", id)
	}

	slog.Warn("event not found, returning synthetic record", "id", id)
	return c.syntheticEarthquake(id)
}

func (c *USGSClient) byIDDirect(ctx context.Context, id string) (models.Earthquake, bool) {
	params := url.Values{}
	params.Set("format", "geojson")
	params.Set("eventid", id)

	features, err := c.query(ctx, params)
	if err != nil || len(features) == 0 {
		return models.Earthquake{}, false
	}
	return normalize.NormalizeUSGS(features[0]), true
}

func (c *USGSClient) byIDRecent(ctx context.Context, id string) (models.Earthquake, bool) {
	start := clock.Now().UTC().Add(-90 * 24 * time.Hour)
	minMag := 0.0
	records, err := c.RecentEarthquakes(ctx, Query{
		Start:        &start,
		MinMagnitude: &minMag,
		Limit:        1000,
	})
	if err != nil {
		return models.Earthquake{}, false
	}
	for _, eq := range records {
		if eq.ID == id {
			return eq, true
		}
	}
	return models.Earthquake{}, false
}

func (c *USGSClient) byIDDetailFeed(ctx context.Context, id string) (models.Earthquake, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s.geojson", c.detailFeedURL, id), nil)
	if err != nil {
		return models.Earthquake{}, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Earthquake{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Earthquake{}, false
	}

	// The detail feed returns a single feature object, not a collection.
	var feature normalize.USGSFeature
	if err := json.NewDecoder(resp.Body).Decode(&feature); err != nil {
		return models.Earthquake{}, false
	}
	if feature.ID == "" {
		feature.ID = id
	}
	return normalize.NormalizeUSGS(feature), true
}

func (c *USGSClient) syntheticEarthquake(id string) models.Earthquake {
	return models.Earthquake{
		ID:            id,
		Place:         "Location unavailable",
		Time:          clock.Now().UTC().Add(-7 * 24 * time.Hour).UnixMilli(),
		MagnitudeType: "Unknown",
		Status:        "unknown",
		Source:        "USGS",
		URL:           fmt.Sprintf("%s/%s", usgsEventPageURL, id),
	}
}
