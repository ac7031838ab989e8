package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/normalize"
	"github.com/nattawatp/quakewatch/internal/observability"
	"github.com/nattawatp/quakewatch/internal/repository"
	"github.com/nattawatp/quakewatch/internal/risk"
)

// EventLookup resolves a single earthquake, falling back to a synthetic
// record; it never fails.
type EventLookup interface {
	EarthquakeByID(ctx context.Context, id string) models.Earthquake
}

// ThailandFeed fetches the live TMD records.
type ThailandFeed interface {
	Earthquakes(ctx context.Context) ([]models.Earthquake, error)
}

// RegionSource lists regions with recent significant seismicity.
type RegionSource interface {
	ActiveRegions(ctx context.Context) ([]string, error)
}

// RiskAssessor computes a risk assessment for a point.
type RiskAssessor interface {
	Assess(ctx context.Context, point models.GeoPoint) models.RiskAssessment
}

// LocationResolver resolves the visitor location; it never fails.
type LocationResolver interface {
	Resolve(ctx context.Context) models.UserLocation
}

type Handler struct {
	repo     repository.EarthquakeRepository
	events   EventLookup
	thailand ThailandFeed
	regions  RegionSource
	assessor RiskAssessor
	resolver LocationResolver
	metrics  *observability.Metrics
}

func NewHandler(repo repository.EarthquakeRepository, events EventLookup, thailand ThailandFeed, regions RegionSource, assessor RiskAssessor, resolver LocationResolver, metrics *observability.Metrics) *Handler {
	return &Handler{
		repo:     repo,
		events:   events,
		thailand: thailand,
		regions:  regions,
		assessor: assessor,
		resolver: resolver,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/earthquakes", h.getEarthquakes)
	r.GET("/api/earthquakes/:id", h.getEarthquakeByID)
	r.GET("/api/thailand/earthquakes", h.getThailandEarthquakes)
	r.GET("/api/regions", h.getRegions)
	r.GET("/api/risk", h.getRisk)
	r.GET("/api/location", h.getLocation)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// getEarthquakes serves the cached snapshot as GeoJSON. Bad query params
// are ignored rather than rejected, matching upstream dashboard behavior.
func (h *Handler) getEarthquakes(c *gin.Context) {
	filter := repository.Filter{
		Limit: 20, // Default to 20 earthquakes if limit param not supplied
	}

	if country := c.Query("country"); country != "" {
		filter.Country = country
	}
	if s := c.Query("start"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if e := c.Query("end"); e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			// Inclusive through the end of the named day.
			end := t.AddDate(0, 0, 1).Add(-time.Millisecond)
			filter.Until = &end
		}
	}
	if m := c.Query("min_magnitude"); m != "" {
		if mag, err := strconv.ParseFloat(m, 64); err == nil {
			filter.MinMagnitude = &mag
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}

	records, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch earthquakes",
		})
		return
	}

	fc := toGeoJSON(records)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

// getEarthquakeByID checks the snapshot first, then walks the upstream
// fallback chain. The response is always a feature, possibly synthetic.
func (h *Handler) getEarthquakeByID(c *gin.Context) {
	id := c.Param("id")

	if eq, err := h.repo.GetByID(c.Request.Context(), id); err == nil && eq != nil {
		c.JSON(http.StatusOK, toFeature(*eq))
		return
	}

	eq := h.events.EarthquakeByID(c.Request.Context(), id)
	c.JSON(http.StatusOK, toFeature(eq))
}

func (h *Handler) getThailandEarthquakes(c *gin.Context) {
	records, err := h.thailand.Earthquakes(c.Request.Context())
	if err != nil {
		// Degrade to an empty collection; the feed is best-effort.
		records = nil
	}

	filter := normalize.Filter{Country: c.Query("country")}
	if s := c.Query("start"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Start = &t
		}
	}
	if e := c.Query("end"); e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			filter.End = &t
		}
	}

	records = normalize.FilterByCountryAndDate(records, filter)
	normalize.SortByTimeDesc(records)

	fc := toGeoJSON(records)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

// getRegions lists regions with recent significant activity, for filter
// dropdowns. Best-effort: upstream failure degrades to an empty list.
func (h *Handler) getRegions(c *gin.Context) {
	regions, err := h.regions.ActiveRegions(c.Request.Context())
	if err != nil || regions == nil {
		regions = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// getRisk assesses the point from lat/lng params, or the resolved visitor
// location when both are omitted.
func (h *Handler) getRisk(c *gin.Context) {
	var point models.GeoPoint

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	switch {
	case latStr == "" && lngStr == "":
		point = h.resolver.Resolve(c.Request.Context()).Point()
	default:
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
			return
		}
		point = models.GeoPoint{Latitude: lat, Longitude: lng}
	}

	assessment := h.assessor.Assess(c.Request.Context(), point)

	outcome := "ok"
	if assessment.HistoricalSummary == risk.UnableToAssessSummary {
		outcome = "degraded"
	}
	h.metrics.RiskAssessments.WithLabelValues(outcome).Inc()

	c.JSON(http.StatusOK, assessment)
}

func (h *Handler) getLocation(c *gin.Context) {
	c.JSON(http.StatusOK, h.resolver.Resolve(c.Request.Context()))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
