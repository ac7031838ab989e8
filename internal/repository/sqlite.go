package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/normalize"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS earthquakes (
			id TEXT PRIMARY KEY,
			place TEXT NOT NULL,
			time INTEGER NOT NULL,
			magnitude REAL NOT NULL,
			magnitude_type TEXT NOT NULL,
			status TEXT NOT NULL,
			tsunami INTEGER NOT NULL DEFAULT 0,
			depth REAL NOT NULL DEFAULT 0,
			longitude REAL NOT NULL DEFAULT 0,
			latitude REAL NOT NULL DEFAULT 0,
			source TEXT NOT NULL,
			url TEXT,
			felt INTEGER,
			cdi REAL,
			mmi REAL,
			alert TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_earthquakes_time ON earthquakes(time);
		CREATE INDEX IF NOT EXISTS idx_earthquakes_source ON earthquakes(source);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Add(ctx context.Context, eq *models.Earthquake) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO earthquakes
			(id, place, time, magnitude, magnitude_type, status, tsunami, depth,
			 longitude, latitude, source, url, felt, cdi, mmi, alert, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		eq.ID, eq.Place, eq.Time, eq.Magnitude, eq.MagnitudeType, eq.Status,
		boolToInt(eq.Tsunami), eq.Depth, eq.Longitude, eq.Latitude, eq.Source,
		nullString(eq.URL), nullIntPtr(eq.Felt), nullFloatPtr(eq.CDI),
		nullFloatPtr(eq.MMI), nullString(string(eq.Alert)), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error inserting earthquake: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Earthquake, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM earthquakes WHERE id = ?`, id)
	eq, err := scanEarthquake(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying earthquake: %w", err)
	}
	return eq, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM earthquakes WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return true, nil
}

// List returns matching records newest-first. Country matching (including
// aliases) happens in Go after the SQL filters so the alias table lives in
// one place.
func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.Earthquake, error) {
	query := selectColumns + ` FROM earthquakes WHERE 1=1`
	var args []any

	if opts.Since != nil {
		query += ` AND time >= ?`
		args = append(args, opts.Since.UnixMilli())
	}
	if opts.Until != nil {
		query += ` AND time <= ?`
		args = append(args, opts.Until.UnixMilli())
	}
	if opts.MinMagnitude != nil {
		query += ` AND magnitude >= ?`
		args = append(args, *opts.MinMagnitude)
	}
	if opts.Source != "" {
		query += ` AND source = ?`
		args = append(args, opts.Source)
	}
	query += ` ORDER BY time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying earthquakes: %w", err)
	}
	defer rows.Close()

	limit := opts.Limit
	var out []models.Earthquake
	for rows.Next() {
		eq, err := scanEarthquake(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning earthquake: %w", err)
		}
		if !normalize.MatchesCountry(eq.Place, opts.Country) {
			continue
		}
		out = append(out, *eq)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

func (s *SQLiteDB) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM earthquakes WHERE time < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("error pruning earthquakes: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, place, time, magnitude, magnitude_type, status,
	tsunami, depth, longitude, latitude, source, url, felt, cdi, mmi, alert`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEarthquake(row rowScanner) (*models.Earthquake, error) {
	var (
		eq      models.Earthquake
		tsunami int
		url     sql.NullString
		felt    sql.NullInt64
		cdi     sql.NullFloat64
		mmi     sql.NullFloat64
		alert   sql.NullString
	)
	err := row.Scan(&eq.ID, &eq.Place, &eq.Time, &eq.Magnitude, &eq.MagnitudeType,
		&eq.Status, &tsunami, &eq.Depth, &eq.Longitude, &eq.Latitude, &eq.Source,
		&url, &felt, &cdi, &mmi, &alert)
	if err != nil {
		return nil, err
	}

	eq.Tsunami = tsunami == 1
	eq.URL = url.String
	if felt.Valid {
		v := int(felt.Int64)
		eq.Felt = &v
	}
	if cdi.Valid {
		v := cdi.Float64
		eq.CDI = &v
	}
	if mmi.Valid {
		v := mmi.Float64
		eq.MMI = &v
	}
	eq.Alert = models.AlertLevel(alert.String)
	return &eq, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullIntPtr(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloatPtr(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
