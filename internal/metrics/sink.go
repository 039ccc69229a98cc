// Package metrics implements an optional render-metrics sink backed by
// SQLite (modernc.org/sqlite). It records each closed render pool's
// Stats (allocation and temp-reuse counters) for offline inspection; a
// nil *Sink is a valid no-op so embedders that don't care about
// metrics pay nothing.
package metrics

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/exprkit/tmplcore/internal/value"
)

// Sink persists render Stats rows to a SQLite database.
type Sink struct {
	db *sql.DB
}

// Open creates (or reuses) a SQLite database at path and ensures its
// schema exists.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("metrics: opening %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS render_stats (
	session_id    TEXT PRIMARY KEY,
	allocations   INTEGER NOT NULL,
	temp_reuses   INTEGER NOT NULL,
	parent_links  INTEGER NOT NULL,
	recorded_at   INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("metrics: creating schema: %w", err)
	}
	return &Sink{db: db}, nil
}

// Record inserts one render's final Stats snapshot, stamped with a
// caller-supplied Unix timestamp, so callers that batch stats from
// several renders can record them under a shared clock reading.
func (s *Sink) Record(stats value.Stats, recordedAt int64) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO render_stats (session_id, allocations, temp_reuses, parent_links, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		stats.SessionID.String(), stats.Allocations, stats.TempReuses, stats.ParentLinks, recordedAt,
	)
	return err
}

// RecordNow is a convenience wrapper around Record using the wall
// clock; most callers outside of tests want this.
func (s *Sink) RecordNow(stats value.Stats) error {
	return s.Record(stats, time.Now().Unix())
}

// Close releases the underlying database handle.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
