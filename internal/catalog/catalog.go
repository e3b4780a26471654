// Package catalog records completed runs in a SQLite index next to the
// field maps, so finished artifacts can be listed without scanning the
// output tree.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	artifact    TEXT NOT NULL,
	param_name  TEXT NOT NULL,
	region      TEXT NOT NULL,
	category    TEXT NOT NULL,
	conductor   INTEGER NOT NULL,
	testing     INTEGER NOT NULL,
	jacobian    INTEGER NOT NULL,
	device      TEXT NOT NULL,
	rows        INTEGER NOT NULL,
	batches     INTEGER NOT NULL,
	started_at  DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_artifact ON runs(artifact);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

type Run struct {
	ID        string
	Artifact  string
	ParamName string
	Region    string
	Category  string
	Conductor int
	Testing   bool
	Jacobian  bool
	Device    string
	Rows      int
	Batches   int
	StartedAt time.Time
	Duration  time.Duration
}

type Catalog struct {
	db *sql.DB
}

func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; concurrent sweep runs serialise on the pool
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) Record(ctx context.Context, r Run) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (id, artifact, param_name, region, category, conductor,
			testing, jacobian, device, rows, batches, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Artifact, r.ParamName, r.Region, r.Category, r.Conductor,
		r.Testing, r.Jacobian, r.Device, r.Rows, r.Batches,
		r.StartedAt.UTC(), r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 means no limit.
func (c *Catalog) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, artifact, param_name, region, category, conductor, testing,
		jacobian, device, rows, batches, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r  Run
			ms int64
		)
		if err := rows.Scan(&r.ID, &r.Artifact, &r.ParamName, &r.Region, &r.Category,
			&r.Conductor, &r.Testing, &r.Jacobian, &r.Device, &r.Rows, &r.Batches,
			&r.StartedAt, &ms); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Latest returns the newest run that wrote artifact.
func (c *Catalog) Latest(ctx context.Context, artifact string) (*Run, error) {
	var (
		r  Run
		ms int64
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT id, artifact, param_name, region, category, conductor, testing,
			jacobian, device, rows, batches, started_at, duration_ms
		FROM runs WHERE artifact = ? ORDER BY started_at DESC LIMIT 1`, artifact).
		Scan(&r.ID, &r.Artifact, &r.ParamName, &r.Region, &r.Category,
			&r.Conductor, &r.Testing, &r.Jacobian, &r.Device, &r.Rows, &r.Batches,
			&r.StartedAt, &ms)
	if err != nil {
		return nil, err
	}
	r.Duration = time.Duration(ms) * time.Millisecond
	return &r, nil
}
