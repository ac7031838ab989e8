package repository

import (
	"context"
	"time"

	"github.com/nattawatp/quakewatch/internal/models"
)

// Filter narrows List results. Nil/zero fields are ignored.
type Filter struct {
	Country      string // matched against place text, aliases included
	Since        *time.Time
	Until        *time.Time
	MinMagnitude *float64
	Source       string
	Limit        int
}

// EarthquakeRepository is the snapshot store the pollers write into and the
// API reads from.
type EarthquakeRepository interface {
	Add(ctx context.Context, eq *models.Earthquake) error
	GetByID(ctx context.Context, id string) (*models.Earthquake, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, opts Filter) ([]models.Earthquake, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}
