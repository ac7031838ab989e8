package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/normalize"
	"github.com/nattawatp/quakewatch/internal/observability"
)

// DefaultTMDURL is the Thai Meteorological Department daily seismic feed.
const DefaultTMDURL = "https://data.tmd.go.th/api/DailySeismicEvent/v1/?uid=api&ukey=api12345"

// tmdEnvelope mirrors the XML root of the TMD feed. DailyEarthquakes may
// appear once or repeat; decoding into a slice handles both.
type tmdEnvelope struct {
	XMLName xml.Name              `xml:"DailySeismicEvents"`
	Header  tmdHeader             `xml:"header"`
	Items   []normalize.TMDRecord `xml:"DailyEarthquakes"`
}

type tmdHeader struct {
	Title         string `xml:"title"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate"`
	Copyright     string `xml:"copyRight"`
	Status        string `xml:"status"`
}

// TMDClient fetches the Thailand regional earthquake feed.
type TMDClient struct {
	url     string
	client  *http.Client
	metrics *observability.Metrics
}

func NewTMDClient(feedURL string, metrics *observability.Metrics) *TMDClient {
	if feedURL == "" {
		feedURL = DefaultTMDURL
	}
	return &TMDClient{
		url:     feedURL,
		client:  &http.Client{Timeout: requestTimeout},
		metrics: metrics,
	}
}

// Earthquakes fetches the feed and returns canonical records, deduplicated
// on the reported (DateTimeThai, latitude, longitude) triple since TMD
// assigns no event IDs.
func (c *TMDClient) Earthquakes(ctx context.Context) ([]models.Earthquake, error) {
	start := clock.Now()
	items, err := c.fetch(ctx)
	c.metrics.FetchDuration.WithLabelValues("tmd").Observe(clock.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("tmd", "error").Inc()
		return nil, err
	}
	c.metrics.FetchRequests.WithLabelValues("tmd", "success").Inc()

	items = normalize.DeduplicateTMD(items)
	records := make([]models.Earthquake, 0, len(items))
	for _, item := range items {
		records = append(records, normalize.NormalizeTMD(item))
	}
	return records, nil
}

func (c *TMDClient) fetch(ctx context.Context) ([]normalize.TMDRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
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

	var data tmdEnvelope
	if err := xml.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return data.Items, nil
}
