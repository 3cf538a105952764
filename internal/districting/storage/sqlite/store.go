package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/districting/internal/districting"
	"github.com/banshee-data/districting/internal/timeutil"
)

// ErrNotFound is returned when an instance or run id has no row.
var ErrNotFound = errors.New("sqlite: not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// Store reads and writes instances and runs.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (or creates) the database at path, applies pragmas and brings
// the schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// WAL pragmas are per connection; keep a single one.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	if err := MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for created_at stamps.
func (s *Store) SetClock(c timeutil.Clock) {
	s.clock = c
}

// DB exposes the underlying handle, e.g. for the SQL browser.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InstanceRecord is a stored instance header.
type InstanceRecord struct {
	InstanceID string `json:"instance_id"`
	Name       string `json:"name"`
	PointCount int    `json:"point_count"`
	CreatedAt  int64  `json:"created_at"`
}

// SaveInstance stores in with a new id and returns it.
func (s *Store) SaveInstance(ctx context.Context, in *districting.Instance) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	id := uuid.New().String()
	now := s.clock.Now().UnixNano()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO instances (instance_id, name, point_count, created_at) VALUES (?, ?, ?, ?)`,
			id, in.Name, len(in.Points), now); err != nil {
			return fmt.Errorf("insert instance: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO demand_points (instance_id, position, point_id, lat, long, demand) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare demand point insert: %w", err)
		}
		defer stmt.Close()

		for i, p := range in.Points {
			if _, err := stmt.ExecContext(ctx, id, i, p.ID, p.Lat, p.Long, p.Demand); err != nil {
				return fmt.Errorf("insert demand point %d: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// LoadInstance reads an instance back with its points in saved order.
func (s *Store) LoadInstance(ctx context.Context, instanceID string) (*districting.Instance, error) {
	var in districting.Instance
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM instances WHERE instance_id = ?`, instanceID).Scan(&in.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("instance %s: %w", instanceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query instance: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT point_id, lat, long, demand
		FROM demand_points
		WHERE instance_id = ?
		ORDER BY position`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("query demand points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p districting.DemandPoint
		if err := rows.Scan(&p.ID, &p.Lat, &p.Long, &p.Demand); err != nil {
			return nil, fmt.Errorf("scan demand point: %w", err)
		}
		in.Points = append(in.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &in, nil
}

// ListInstances returns all stored instance headers, newest first.
func (s *Store) ListInstances(ctx context.Context) ([]InstanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instance_id, name, point_count, created_at
		FROM instances
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	var out []InstanceRecord
	for rows.Next() {
		var r InstanceRecord
		if err := rows.Scan(&r.InstanceID, &r.Name, &r.PointCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}
