// Package canon persists the durable slice of world state: the global
// pressure level and bleed tier, each zone's cumulative resonance, and the
// per-NPC contradiction flags. Everything else is per-tick ephemera —
// turbulence and wind-down timers deliberately reset to baseline on reload.
package canon

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS canon_versions (
	version_id   TEXT PRIMARY KEY,
	parent_id    TEXT,
	level        REAL NOT NULL,
	bleed_tier   INTEGER NOT NULL,
	sim_time     REAL NOT NULL,
	resonance    TEXT NOT NULL,
	contradicted TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES canon_versions(version_id)
);

CREATE TABLE IF NOT EXISTS event_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id  TEXT,
	event_type  TEXT NOT NULL,
	npc_id      TEXT,
	zone_id     TEXT,
	detail      TEXT,
	sim_time    REAL NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS active_canon (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	version_id TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES canon_versions(version_id)
);
`

// #endregion schema

// #region record

// Record is one durable canon snapshot.
type Record struct {
	VersionID string
	ParentID  string
	Level     float64
	BleedTier int
	SimTime   float64
	Resonance map[string]float64 // zone id → cumulative resonance
	Used      map[string]bool    // npc id → contradiction flag
	CreatedAt time.Time
}

// EventEntry is one row of the durable event log.
type EventEntry struct {
	VersionID string
	EventType string // tier_changed | contradiction | reset
	NPCID     string
	ZoneID    string
	Detail    string
	SimTime   float64
	CreatedAt time.Time
}

// #endregion record

// #region store

// Store manages versioned canon records in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the canon database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region save

// Save inserts a new canon version and moves the active pointer atomically.
// The record's parent is the previously active version, if any.
func (s *Store) Save(rec Record) (Record, error) {
	if rec.VersionID == "" {
		rec.VersionID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	resJSON, err := json.Marshal(rec.Resonance)
	if err != nil {
		return Record{}, fmt.Errorf("marshal resonance: %w", err)
	}
	usedJSON, err := json.Marshal(rec.Used)
	if err != nil {
		return Record{}, fmt.Errorf("marshal contradiction flags: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parent sql.NullString
	if err := tx.QueryRow(`SELECT version_id FROM active_canon WHERE id = 1`).Scan(&parent); err != nil && err != sql.ErrNoRows {
		return Record{}, fmt.Errorf("read active: %w", err)
	}
	if parent.Valid {
		rec.ParentID = parent.String
	}

	var parentPtr interface{}
	if rec.ParentID != "" {
		parentPtr = rec.ParentID
	}

	_, err = tx.Exec(
		`INSERT INTO canon_versions (version_id, parent_id, level, bleed_tier, sim_time, resonance, contradicted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, parentPtr, rec.Level, rec.BleedTier, rec.SimTime,
		string(resJSON), string(usedJSON), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_canon (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return Record{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion save

// #region load

// LoadActive reads the active canon version. sql.ErrNoRows when the world
// has never been saved.
func (s *Store) LoadActive() (Record, error) {
	var versionID string
	if err := s.db.QueryRow(`SELECT version_id FROM active_canon WHERE id = 1`).Scan(&versionID); err != nil {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	return s.LoadVersion(versionID)
}

// LoadVersion retrieves a specific canon version by ID.
func (s *Store) LoadVersion(id string) (Record, error) {
	var rec Record
	var parentID sql.NullString
	var resJSON, usedJSON, createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, parent_id, level, bleed_tier, sim_time, resonance, contradicted, created_at
		 FROM canon_versions WHERE version_id = ?`, id,
	).Scan(&rec.VersionID, &parentID, &rec.Level, &rec.BleedTier, &rec.SimTime, &resJSON, &usedJSON, &createdStr)
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}

	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	if err := json.Unmarshal([]byte(resJSON), &rec.Resonance); err != nil {
		return Record{}, fmt.Errorf("unmarshal resonance: %w", err)
	}
	if err := json.Unmarshal([]byte(usedJSON), &rec.Used); err != nil {
		return Record{}, fmt.Errorf("unmarshal contradiction flags: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// ListVersions returns the most recent canon versions, newest first.
func (s *Store) ListVersions(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT version_id FROM canon_versions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.LoadVersion(id)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// #endregion load

// #region event-log

// LogEvent appends a durable event entry.
func (s *Store) LogEvent(entry EventEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO event_log (version_id, event_type, npc_id, zone_id, detail, sim_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.VersionID), entry.EventType, nullIfEmpty(entry.NPCID),
		nullIfEmpty(entry.ZoneID), nullIfEmpty(entry.Detail), entry.SimTime,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent event entries, newest first.
func (s *Store) ListEvents(limit int) ([]EventEntry, error) {
	rows, err := s.db.Query(
		`SELECT COALESCE(version_id, ''), event_type, COALESCE(npc_id, ''), COALESCE(zone_id, ''),
		        COALESCE(detail, ''), sim_time, created_at
		 FROM event_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var entries []EventEntry
	for rows.Next() {
		var e EventEntry
		var createdStr string
		if err := rows.Scan(&e.VersionID, &e.EventType, &e.NPCID, &e.ZoneID, &e.Detail, &e.SimTime, &createdStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion event-log
