// Package persistence stores simulation runs and their metric series in
// SQLite. Each run gets a UUID so multiple runs can share one database file.
package persistence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/floodsim/internal/model"
)

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		seed INTEGER NOT NULL,
		steps INTEGER NOT NULL DEFAULT 0,
		config TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metrics (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		avg_flood_level REAL NOT NULL,
		total_damage REAL NOT NULL,
		evacuation_rate REAL NOT NULL,
		shelter_occupancy_rate REAL NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_run ON metrics(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_run_step ON events(run_id, step);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one simulation run record.
type Run struct {
	ID         string  `db:"id"`
	StartedAt  string  `db:"started_at"`
	FinishedAt *string `db:"finished_at"`
	Seed       int64   `db:"seed"`
	Steps      uint64  `db:"steps"`
	Config     string  `db:"config"`
}

// Event is a notable occurrence recorded during a run.
type Event struct {
	Step        uint64 `db:"step" json:"step"`
	Description string `db:"description" json:"description"`
	Category    string `db:"category" json:"category"`
}

// BeginRun creates a run record and returns its ID.
func (db *DB) BeginRun(seed int64, configYAML string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, started_at, seed, config) VALUES (?, ?, ?, ?)",
		id, time.Now().UTC().Format(time.RFC3339), seed, configYAML,
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's completion time and final step count.
func (db *DB) FinishRun(runID string, steps uint64) error {
	_, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, steps = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), steps, runID,
	)
	return err
}

// SaveMetrics appends metric rows for a run.
func (db *DB) SaveMetrics(runID string, rows []model.Metrics) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO metrics
		(run_id, step, avg_flood_level, total_damage, evacuation_rate, shelter_occupancy_rate)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(runID, row.Step,
			row.AverageFloodLevel, row.TotalDamage,
			row.EvacuationRate, row.ShelterOccupancyRate)
		if err != nil {
			return fmt.Errorf("insert metrics step %d: %w", row.Step, err)
		}
	}
	return tx.Commit()
}

// SaveEvents appends events for a run.
func (db *DB) SaveEvents(runID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, step, description, category) VALUES (?, ?, ?, ?)",
			runID, e.Step, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MetricsHistory returns the full metric series of a run in step order.
func (db *DB) MetricsHistory(runID string) ([]model.Metrics, error) {
	var rows []model.Metrics
	err := db.conn.Select(&rows,
		`SELECT step, avg_flood_level, total_damage, evacuation_rate, shelter_occupancy_rate
		 FROM metrics WHERE run_id = ? ORDER BY step`, runID)
	return rows, err
}

// RecentEvents returns the most recent N events of a run.
func (db *DB) RecentEvents(runID string, limit int) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		"SELECT step, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit)
	return events, err
}
