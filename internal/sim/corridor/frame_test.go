package corridor

import (
	"testing"

	"corridorsim/internal/protocol"
)

func TestFrame_CellCategories(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 5, Width: 3, TransProb: 1.0})
	infector := &Agent{ID: 1, Direction: 1, Infected: true}
	target := &Agent{ID: 2, Direction: -1}
	c.Enter(infector, 2, 1)
	c.Enter(target, 2, 2)

	c.SpreadInfection()
	c.refreshFrame()
	frame := c.Frame()

	if len(frame) != c.cfg.Width || len(frame[0]) != c.cfg.Length {
		t.Fatalf("frame is %dx%d, want %dx%d", len(frame), len(frame[0]), c.cfg.Width, c.cfg.Length)
	}
	if frame[1][2] != protocol.CellInfected {
		t.Fatalf("infector cell=%d, want %d", frame[1][2], protocol.CellInfected)
	}
	if frame[2][2] != protocol.CellNewlyInfected {
		t.Fatalf("target cell=%d, want %d", frame[2][2], protocol.CellNewlyInfected)
	}
	if frame[0][0] != protocol.CellEmpty {
		t.Fatalf("empty cell=%d, want %d", frame[0][0], protocol.CellEmpty)
	}

	// The frame is a copy; mutating it must not leak into the corridor.
	frame[1][2] = protocol.CellEmpty
	if c.frame[1][2] != protocol.CellInfected {
		t.Fatalf("Frame() exposed internal state")
	}
}

func TestFrame_RegeneratedEachTick(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 5, Width: 3, TransProb: 1.0})
	a := &Agent{ID: 1, Direction: 1}
	c.Enter(a, 2, 1)

	c.refreshFrame()
	if got := c.Frame()[1][2]; got != protocol.CellSusceptible {
		t.Fatalf("cell=%d, want susceptible", got)
	}

	if !c.AttemptMove(a, 3, 1) {
		t.Fatalf("setup move failed")
	}
	c.refreshFrame()
	frame := c.Frame()
	if frame[1][2] != protocol.CellEmpty {
		t.Fatalf("stale occupant left behind in regenerated frame")
	}
	if frame[1][3] != protocol.CellSusceptible {
		t.Fatalf("moved occupant missing from regenerated frame")
	}
}
