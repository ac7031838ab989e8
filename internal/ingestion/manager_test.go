package ingestion

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nattawatp/quakewatch/internal/config"
	"github.com/nattawatp/quakewatch/internal/fetch"
	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/observability"
	"github.com/nattawatp/quakewatch/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memoryRepo struct {
	mu     sync.Mutex
	items  map[string]models.Earthquake
	pruned int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[string]models.Earthquake)}
}

func (r *memoryRepo) Add(ctx context.Context, eq *models.Earthquake) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[eq.ID] = *eq
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*models.Earthquake, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if eq, ok := r.items[id]; ok {
		return &eq, nil
	}
	return nil, nil
}

func (r *memoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *memoryRepo) List(ctx context.Context, opts repository.Filter) ([]models.Earthquake, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Earthquake, 0, len(r.items))
	for _, eq := range r.items {
		out = append(out, eq)
	}
	return out, nil
}

func (r *memoryRepo) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruned++
	var n int64
	for id, eq := range r.items {
		if eq.Time < olderThan.UnixMilli() {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type fakeUSGS struct {
	records []models.Earthquake
	err     error
}

func (f *fakeUSGS) RecentEarthquakes(ctx context.Context, q fetch.Query) ([]models.Earthquake, error) {
	return f.records, f.err
}

type fakeTMD struct {
	records []models.Earthquake
	err     error
}

func (f *fakeTMD) Earthquakes(ctx context.Context) ([]models.Earthquake, error) {
	return f.records, f.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Worker.Count = 2
	cfg.Worker.BufferSize = 50
	cfg.Sources.USGSEnabled = true
	cfg.Sources.USGSPollInterval = time.Minute
	cfg.Sources.TMDEnabled = true
	cfg.Sources.TMDPollInterval = time.Minute
	cfg.DB.RetentionDays = 90
	return cfg
}

func record(id string, at time.Time, source string) models.Earthquake {
	return models.Earthquake{
		ID:        id,
		Place:     "somewhere",
		Time:      at.UnixMilli(),
		Magnitude: 4.0,
		Source:    source,
	}
}

func runManager(t *testing.T, cfg *config.Config, repo *memoryRepo, usgs USGSSource, tmd TMDSource) {
	t.Helper()
	mgr := NewManager(cfg, repo, usgs, tmd, observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	// The initial poll happens synchronously inside each poller goroutine
	// before the first tick; give it a moment, then shut down.
	time.Sleep(100 * time.Millisecond)
	cancel()
	mgr.Stop()
}

func TestManager_IngestsBothFeeds(t *testing.T) {
	now := time.Now()
	repo := newMemoryRepo()
	usgs := &fakeUSGS{records: []models.Earthquake{
		record("us1", now, "USGS"),
		record("us2", now, "USGS"),
	}}
	tmd := &fakeTMD{records: []models.Earthquake{
		record("tmd_1", now, "tmd"),
	}}

	runManager(t, testConfig(), repo, usgs, tmd)

	assert.Equal(t, 3, repo.count())
	for _, id := range []string{"us1", "us2", "tmd_1"} {
		exists, err := repo.Exists(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, exists, id)
	}
}

func TestManager_SkipsExistingRecords(t *testing.T) {
	now := time.Now()
	repo := newMemoryRepo()
	seen := record("us1", now.Add(-time.Hour), "USGS")
	seen.Magnitude = 9.9
	require.NoError(t, repo.Add(context.Background(), &seen))

	usgs := &fakeUSGS{records: []models.Earthquake{record("us1", now, "USGS")}}
	cfg := testConfig()
	cfg.Sources.TMDEnabled = false

	runManager(t, cfg, repo, usgs, &fakeTMD{})

	got, err := repo.GetByID(context.Background(), "us1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9.9, got.Magnitude, "existing record must not be overwritten")
}

func TestManager_PollErrorDoesNotIngest(t *testing.T) {
	repo := newMemoryRepo()
	usgs := &fakeUSGS{err: fmt.Errorf("upstream unavailable")}
	cfg := testConfig()
	cfg.Sources.TMDEnabled = false

	runManager(t, cfg, repo, usgs, &fakeTMD{})

	assert.Equal(t, 0, repo.count())
}

func TestManager_PrunesAfterPoll(t *testing.T) {
	now := time.Now()
	repo := newMemoryRepo()
	stale := record("ancient", now.AddDate(0, 0, -120), "USGS")
	require.NoError(t, repo.Add(context.Background(), &stale))

	usgs := &fakeUSGS{records: []models.Earthquake{record("us1", now, "USGS")}}
	cfg := testConfig()
	cfg.Sources.TMDEnabled = false

	runManager(t, cfg, repo, usgs, &fakeTMD{})

	exists, err := repo.Exists(context.Background(), "ancient")
	require.NoError(t, err)
	assert.False(t, exists, "records past retention are pruned")

	exists, err = repo.Exists(context.Background(), "us1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestManager_DisabledSourcesDoNotPoll(t *testing.T) {
	repo := newMemoryRepo()
	usgs := &fakeUSGS{records: []models.Earthquake{record("us1", time.Now(), "USGS")}}
	tmd := &fakeTMD{records: []models.Earthquake{record("tmd_1", time.Now(), "tmd")}}

	cfg := testConfig()
	cfg.Sources.USGSEnabled = false
	cfg.Sources.TMDEnabled = false

	runManager(t, cfg, repo, usgs, tmd)

	assert.Equal(t, 0, repo.count())
}
