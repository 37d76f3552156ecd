// Package store persists the interaction log: which sessions connected,
// which tooltips were shown and which demos were opened. Behavioral state
// never lives here; a page reload starts from nothing, the log is operator
// telemetry only.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			bridge_version TEXT NOT NULL DEFAULT '',
			started_utc TIMESTAMP NOT NULL,
			ended_utc TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tooltip_shows (
			session_id TEXT NOT NULL,
			tooltip_id TEXT NOT NULL,
			shown_utc TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS demo_activations (
			session_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			preloaded INTEGER NOT NULL DEFAULT 0,
			activated_utc TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tooltip_shows_session ON tooltip_shows(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_demo_activations_agent ON demo_activations(agent_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}

func (s *Store) RecordSessionStart(id, bridgeVersion string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, bridge_version, started_utc) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET bridge_version = excluded.bridge_version`,
		id, bridgeVersion, at.UTC())
	if err != nil {
		return fmt.Errorf("record session start: %w", err)
	}
	return nil
}

func (s *Store) RecordSessionEnd(id string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE sessions SET ended_utc = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("record session end: %w", err)
	}
	return nil
}

func (s *Store) RecordTooltipShow(sessionID, tooltipID string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO tooltip_shows (session_id, tooltip_id, shown_utc) VALUES (?, ?, ?)`,
		sessionID, tooltipID, at.UTC())
	if err != nil {
		return fmt.Errorf("record tooltip show: %w", err)
	}
	return nil
}

func (s *Store) RecordDemoActivation(sessionID, agentID string, preloaded bool, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO demo_activations (session_id, agent_id, preloaded, activated_utc) VALUES (?, ?, ?, ?)`,
		sessionID, agentID, boolToInt(preloaded), at.UTC())
	if err != nil {
		return fmt.Errorf("record demo activation: %w", err)
	}
	return nil
}

type Stats struct {
	Sessions        int             `json:"sessions"`
	TooltipShows    int             `json:"tooltip_shows"`
	DemoActivations int             `json:"demo_activations"`
	PreloadHits     int             `json:"preload_hits"`
	ByAgent         []AgentActivity `json:"by_agent,omitempty"`
}

type AgentActivity struct {
	AgentID     string `json:"agent_id"`
	Activations int    `json:"activations"`
	PreloadHits int    `json:"preload_hits"`
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&st.Sessions); err != nil {
		return st, fmt.Errorf("count sessions: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tooltip_shows`).Scan(&st.TooltipShows); err != nil {
		return st, fmt.Errorf("count tooltip shows: %w", err)
	}
	if err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(preloaded), 0) FROM demo_activations`).
		Scan(&st.DemoActivations, &st.PreloadHits); err != nil {
		return st, fmt.Errorf("count demo activations: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT agent_id, COUNT(*), COALESCE(SUM(preloaded), 0)
		 FROM demo_activations GROUP BY agent_id ORDER BY agent_id`)
	if err != nil {
		return st, fmt.Errorf("group demo activations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a AgentActivity
		if err := rows.Scan(&a.AgentID, &a.Activations, &a.PreloadHits); err != nil {
			return st, fmt.Errorf("scan agent activity: %w", err)
		}
		st.ByAgent = append(st.ByAgent, a)
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate agent activity: %w", err)
	}
	return st, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
