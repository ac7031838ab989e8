// Package ingestion polls the upstream feeds on configured intervals and
// funnels normalized records into the snapshot repository.
package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nattawatp/quakewatch/internal/config"
	"github.com/nattawatp/quakewatch/internal/fetch"
	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/observability"
	"github.com/nattawatp/quakewatch/internal/repository"
	"github.com/nattawatp/quakewatch/internal/worker"
)

// USGSSource and TMDSource are the slices of the fetch clients the manager
// needs; tests substitute fakes.
type USGSSource interface {
	RecentEarthquakes(ctx context.Context, q fetch.Query) ([]models.Earthquake, error)
}

type TMDSource interface {
	Earthquakes(ctx context.Context) ([]models.Earthquake, error)
}

type Manager struct {
	cfg     *config.Config
	repo    repository.EarthquakeRepository
	usgs    USGSSource
	tmd     TMDSource
	metrics *observability.Metrics
	pool    *worker.Pool
	wg      sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.EarthquakeRepository, usgs USGSSource, tmd TMDSource, metrics *observability.Metrics) *Manager {
	return &Manager{
		cfg:     cfg,
		repo:    repo,
		usgs:    usgs,
		tmd:     tmd,
		metrics: metrics,
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, eq *models.Earthquake) error {
		exists, err := m.repo.Exists(ctx, eq.ID)
		if err != nil {
			slog.Error("error checking existence", "id", eq.ID, "error", err)
			return err
		}
		if exists {
			return nil
		}

		if err := m.repo.Add(ctx, eq); err != nil {
			slog.Error("error adding earthquake", "id", eq.ID, "error", err)
			return err
		}

		m.metrics.RecordsIngested.WithLabelValues(sourceLabel(eq.Source)).Inc()
		slog.Info("added earthquake", "id", eq.ID, "magnitude", eq.Magnitude, "source", eq.Source)
		return nil
	}

	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	if m.cfg.Sources.USGSEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, "usgs", m.cfg.Sources.USGSPollInterval)
	}

	if m.cfg.Sources.TMDEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, "tmd", m.cfg.Sources.TMDPollInterval)
	}
}

func (m *Manager) runPoller(ctx context.Context, source string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", source, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, source)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", source)
			return
		case <-ticker.C:
			m.poll(ctx, source)
		}
	}
}

func (m *Manager) poll(ctx context.Context, source string) {
	slog.Debug("polling", "source", source)

	var (
		records []models.Earthquake
		err     error
	)

	switch source {
	case "usgs":
		records, err = m.usgs.RecentEarthquakes(ctx, fetch.Query{})
	case "tmd":
		records, err = m.tmd.Earthquakes(ctx)
	}
	if err != nil {
		m.metrics.PollCycles.WithLabelValues(source, "error").Inc()
		slog.Error("poll failed", "source", source, "error", err)
		return
	}

	for i := range records {
		m.pool.Submit(&records[i])
	}
	m.metrics.PollCycles.WithLabelValues(source, "success").Inc()

	m.prune(ctx)

	slog.Debug("poll complete", "source", source, "count", len(records))
}

// prune drops records past the retention window after each cycle.
func (m *Manager) prune(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -m.cfg.DB.RetentionDays)
	n, err := m.repo.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("prune failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("pruned old earthquakes", "count", n, "cutoff", cutoff)
	}
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}

// sourceLabel buckets network codes into the two feed labels used by metrics.
func sourceLabel(source string) string {
	if source == "tmd" {
		return "tmd"
	}
	return "usgs"
}
