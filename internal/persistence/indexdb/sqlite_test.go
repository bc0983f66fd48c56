package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"corridorsim/internal/sim/corridor"
)

func TestSQLiteIndex_RunRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	recs := []corridor.AgentRecord{
		{ID: 1, Direction: 1, Infected: true, InfectedOnEntry: true, InfectionsCaused: 2, Exited: true},
		{ID: 2, Direction: -1, Infected: true, InfectionsCaused: 0, Exited: false},
		{ID: 3, Direction: 1},
	}
	for _, rec := range recs {
		idx.RecordAgent("run_1", rec)
	}
	idx.RecordRun(RunRow{
		RunID:           "run_1",
		Seed:            42,
		Length:          200,
		Width:           10,
		TransProb:       0.1,
		InfectedShare:   0.1,
		Interarrivals:   3,
		Ticks:           1000,
		TotalEntered:    3,
		TotalInfected:   2,
		InfectedFrac:    2.0 / 3.0,
		MeanInfections:  1,
		StdevInfections: 1.4142,
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen read-side and verify everything survived.
	idx2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx2.Close()

	run, err := idx2.Run("run_1")
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Ticks != 1000 || run.TotalEntered != 3 || run.TotalInfected != 2 {
		t.Fatalf("run row mismatch: %+v", run)
	}
	if run.Seed != 42 || run.Length != 200 || run.Width != 10 {
		t.Fatalf("run config mismatch: %+v", run)
	}

	got, err := idx2.Agents("run_1")
	if err != nil {
		t.Fatalf("load agents: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("got %d agent rows, want %d", len(got), len(recs))
	}
	for i := range recs {
		if got[i] != recs[i] {
			t.Fatalf("agent row %d: got %+v want %+v", i, got[i], recs[i])
		}
	}

	runs, err := idx2.Runs()
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs list: %v (%d rows)", err, len(runs))
	}
}

func TestSQLiteIndex_MissingRun(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	if _, err := idx.Run("nope"); err != sql.ErrNoRows {
		t.Fatalf("want sql.ErrNoRows, got %v", err)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
