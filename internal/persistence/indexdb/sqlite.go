// Package indexdb maintains a sqlite read-model of finished runs: one row per
// run and one row per agent that ever entered. It never feeds back into the
// simulation; cmd/report and ad-hoc queries are its consumers.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"corridorsim/internal/sim/corridor"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqAgent reqKind = iota + 1
	reqRun
)

type req struct {
	kind  reqKind
	agent agentRow
	run   RunRow
}

type agentRow struct {
	RunID  string
	Record corridor.AgentRecord
}

// RunRow is one finished run.
type RunRow struct {
	RunID         string
	Seed          int64
	Length        int
	Width         int
	TransProb     float64
	InfectedShare float64
	Interarrivals int
	Ticks         uint64

	TotalEntered    int
	TotalInfected   int
	InfectedFrac    float64
	MeanInfections  float64
	StdevInfections float64

	RecordedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			length INTEGER NOT NULL,
			width INTEGER NOT NULL,
			trans_prob REAL NOT NULL,
			infected_share REAL NOT NULL,
			interarrivals INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			total_entered INTEGER NOT NULL,
			total_infected INTEGER NOT NULL,
			infected_frac REAL NOT NULL,
			mean_infections REAL NOT NULL,
			stdev_infections REAL NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS agents (
			run_id TEXT NOT NULL,
			agent_id INTEGER NOT NULL,
			direction INTEGER NOT NULL,
			infected INTEGER NOT NULL,
			infected_on_entry INTEGER NOT NULL,
			infections_caused INTEGER NOT NULL,
			exited INTEGER NOT NULL,
			PRIMARY KEY (run_id, agent_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_agents_run_infected ON agents(run_id, infected);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordAgent enqueues one terminal agent row. Blocks if the writer is
// behind; these writes happen after the run, so backpressure is fine.
func (s *SQLiteIndex) RecordAgent(runID string, rec corridor.AgentRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	s.ch <- req{kind: reqAgent, agent: agentRow{RunID: runID, Record: rec}}
}

// RecordRun enqueues the run summary row.
func (s *SQLiteIndex) RecordRun(row RunRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if row.RecordedAt == "" {
		row.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.ch <- req{kind: reqRun, run: row}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqAgent:
			a := r.agent
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO agents
				 (run_id, agent_id, direction, infected, infected_on_entry, infections_caused, exited)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				a.RunID, a.Record.ID, a.Record.Direction,
				boolInt(a.Record.Infected), boolInt(a.Record.InfectedOnEntry),
				a.Record.InfectionsCaused, boolInt(a.Record.Exited),
			)
		case reqRun:
			row := r.run
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO runs
				 (run_id, seed, length, width, trans_prob, infected_share, interarrivals, ticks,
				  total_entered, total_infected, infected_frac, mean_infections, stdev_infections, recorded_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				row.RunID, row.Seed, row.Length, row.Width, row.TransProb, row.InfectedShare,
				row.Interarrivals, row.Ticks, row.TotalEntered, row.TotalInfected,
				row.InfectedFrac, row.MeanInfections, row.StdevInfections, row.RecordedAt,
			)
		}
	}
}

// Run loads one run summary row.
func (s *SQLiteIndex) Run(runID string) (RunRow, error) {
	var row RunRow
	err := s.db.QueryRow(
		`SELECT run_id, seed, length, width, trans_prob, infected_share, interarrivals, ticks,
		        total_entered, total_infected, infected_frac, mean_infections, stdev_infections, recorded_at
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&row.RunID, &row.Seed, &row.Length, &row.Width, &row.TransProb, &row.InfectedShare,
		&row.Interarrivals, &row.Ticks, &row.TotalEntered, &row.TotalInfected,
		&row.InfectedFrac, &row.MeanInfections, &row.StdevInfections, &row.RecordedAt)
	return row, err
}

// Runs lists stored runs, most recent first.
func (s *SQLiteIndex) Runs() ([]RunRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seed, length, width, trans_prob, infected_share, interarrivals, ticks,
		        total_entered, total_infected, infected_frac, mean_infections, stdev_infections, recorded_at
		 FROM runs ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.RunID, &row.Seed, &row.Length, &row.Width, &row.TransProb,
			&row.InfectedShare, &row.Interarrivals, &row.Ticks, &row.TotalEntered,
			&row.TotalInfected, &row.InfectedFrac, &row.MeanInfections,
			&row.StdevInfections, &row.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Agents loads the terminal agent rows for a run, in entry order.
func (s *SQLiteIndex) Agents(runID string) ([]corridor.AgentRecord, error) {
	rows, err := s.db.Query(
		`SELECT agent_id, direction, infected, infected_on_entry, infections_caused, exited
		 FROM agents WHERE run_id = ? ORDER BY agent_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []corridor.AgentRecord
	for rows.Next() {
		var rec corridor.AgentRecord
		var infected, onEntry, exited int
		if err := rows.Scan(&rec.ID, &rec.Direction, &infected, &onEntry, &rec.InfectionsCaused, &exited); err != nil {
			return nil, err
		}
		rec.Infected = infected != 0
		rec.InfectedOnEntry = onEntry != 0
		rec.Exited = exited != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
