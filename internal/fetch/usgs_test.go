package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/observability"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func withFakeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { SetClock(nil) })
}

func newTestUSGSClient(t *testing.T, handler http.HandlerFunc) *USGSClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewUSGSClient(srv.URL, observability.NewMetricsForTesting())
	c.detailFeedURL = srv.URL + "/detail"
	return c
}

func featureJSON(id string, mag float64, timeMs int64, place string) string {
	return fmt.Sprintf(`{"id":%q,"properties":{"place":%q,"time":%d,"mag":%g,"magType":"mb","status":"reviewed","tsunami":0,"sources":"us,ak"},"geometry":{"coordinates":[100.5,13.7,10.0]}}`,
		id, place, timeMs, mag)
}

func TestRecentEarthquakes_DefaultsAndNormalization(t *testing.T) {
	withFakeClock(t)

	var gotQuery map[string]string
	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"starttime":    q.Get("starttime"),
			"endtime":      q.Get("endtime"),
			"minmagnitude": q.Get("minmagnitude"),
			"limit":        q.Get("limit"),
			"orderby":      q.Get("orderby"),
		}
		fmt.Fprintf(w, `{"features":[%s,%s,%s]}`,
			featureJSON("old", 3.0, 1000, "somewhere"),
			featureJSON("new", 4.0, 2000, "elsewhere"),
			featureJSON("old", 3.0, 1000, "somewhere"), // duplicate ID
		)
	})

	records, err := client.RecentEarthquakes(context.Background(), Query{})
	require.NoError(t, err)

	assert.Equal(t, "2024-05-02T12:00:00", gotQuery["starttime"], "defaults to 30 days back")
	assert.Equal(t, "2024-06-01T12:00:00", gotQuery["endtime"])
	assert.Equal(t, "2.5", gotQuery["minmagnitude"])
	assert.Equal(t, "500", gotQuery["limit"])
	assert.Equal(t, "time", gotQuery["orderby"])

	require.Len(t, records, 2, "duplicate IDs collapse")
	assert.Equal(t, "new", records[0].ID, "sorted newest-first")
	assert.Equal(t, "us", records[0].Source)
}

func TestRecentEarthquakes_CountryFilter(t *testing.T) {
	withFakeClock(t)

	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"features":[%s,%s]}`,
			featureJSON("a", 4.0, 2000, "120km SW of Anchorage, USA"),
			featureJSON("b", 4.5, 3000, "Banda Sea, Indonesia"),
		)
	})

	records, err := client.RecentEarthquakes(context.Background(), Query{Country: "United States"})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
}

func TestRecentEarthquakes_UpstreamError(t *testing.T) {
	withFakeClock(t)

	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.RecentEarthquakes(context.Background(), Query{})
	assert.Error(t, err)
}

func TestRegionStatistics(t *testing.T) {
	withFakeClock(t)

	yearStart := testNow.Add(-365 * 24 * time.Hour).Format(usgsTimeLayout)
	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("starttime") == yearStart {
			// Full-window query: three events, peak M5.2.
			fmt.Fprintf(w, `{"features":[%s,%s,%s]}`,
				featureJSON("y1", 5.2, 1000, "a"),
				featureJSON("y2", 3.1, 2000, "b"),
				featureJSON("y3", 4.0, 3000, "c"),
			)
			return
		}
		// Trailing 30-day query: one event.
		fmt.Fprintf(w, `{"features":[%s]}`, featureJSON("r1", 3.1, 3000, "b"))
	})

	stats, err := client.RegionStatistics(context.Background(), models.GeoPoint{Latitude: 13.7, Longitude: 100.5}, 500, 365)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 5.2, stats.MaxMagnitude)
	assert.InDelta(t, 1.0/30, stats.RecentActivity, 1e-9)
}

func TestActiveRegions(t *testing.T) {
	withFakeClock(t)

	var gotQuery map[string]string
	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"minmagnitude": q.Get("minmagnitude"),
			"limit":        q.Get("limit"),
		}
		fmt.Fprintf(w, `{"features":[%s,%s,%s]}`,
			featureJSON("a", 4.5, 1000, "10km NE of Tokyo, Japan"),
			featureJSON("b", 5.0, 2000, "Banda Sea, Indonesia"),
			featureJSON("c", 4.1, 3000, "22km S of Sapporo, Japan"),
		)
	})

	regions, err := client.ActiveRegions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "4", gotQuery["minmagnitude"])
	assert.Equal(t, "500", gotQuery["limit"])
	assert.Equal(t, []string{"Indonesia", "Japan"}, regions)
}

func TestActiveRegions_UpstreamError(t *testing.T) {
	withFakeClock(t)

	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ActiveRegions(context.Background())
	assert.Error(t, err)
}

func TestEarthquakeByID_DirectHit(t *testing.T) {
	withFakeClock(t)

	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "us123", r.URL.Query().Get("eventid"))
		fmt.Fprintf(w, `{"features":[%s]}`, featureJSON("us123", 5.5, 4000, "offshore"))
	})

	eq := client.EarthquakeByID(context.Background(), "us123")
	assert.Equal(t, "us123", eq.ID)
	assert.Equal(t, 5.5, eq.Magnitude)
}

func TestEarthquakeByID_FallsBackToRecent(t *testing.T) {
	withFakeClock(t)

	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("eventid") != "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"features":[%s]}`, featureJSON("us456", 4.2, 5000, "inland"))
	})

	eq := client.EarthquakeByID(context.Background(), "us456")
	assert.Equal(t, "us456", eq.ID)
	assert.Equal(t, 4.2, eq.Magnitude)
}

func TestEarthquakeByID_DetailFeedFallback(t *testing.T) {
	withFakeClock(t)

	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/detail/us789.geojson" {
			// Detail feed returns a bare feature, not a collection.
			fmt.Fprint(w, featureJSON("us789", 6.0, 6000, "deep"))
			return
		}
		fmt.Fprint(w, `{"features":[]}`)
	})

	eq := client.EarthquakeByID(context.Background(), "us789")
	assert.Equal(t, "us789", eq.ID)
	assert.Equal(t, 6.0, eq.Magnitude)
}

func TestEarthquakeByID_SyntheticLastResort(t *testing.T) {
	withFakeClock(t)

	client := newTestUSGSClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	eq := client.EarthquakeByID(context.Background(), "ghost")

	assert.Equal(t, "ghost", eq.ID)
	assert.Equal(t, "Location unavailable", eq.Place)
	assert.Equal(t, 0.0, eq.Magnitude)
	assert.Equal(t, testNow.Add(-7*24*time.Hour).UnixMilli(), eq.Time)
	assert.Contains(t, eq.URL, "ghost")
}
