package corridor

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 10, Width: 4})

	agents := []*Agent{
		{ID: 1, Direction: 1, Infected: true, InfectedOnEntry: true, InfectionsCaused: 1},
		{ID: 2, Direction: -1, Infected: true, InfectionsCaused: 3},
		{ID: 3, Direction: 1},
	}
	for i, a := range agents {
		if !c.Enter(a, i, 0) {
			t.Fatalf("enter %d failed", a.ID)
		}
	}

	s := c.Summarize()
	if s.TotalEntered != 3 || s.TotalInfected != 2 {
		t.Fatalf("entered=%d infected=%d, want 3/2", s.TotalEntered, s.TotalInfected)
	}
	if got, want := s.InfectedShare, 2.0/3.0; math.Abs(got-want) > 1e-12 {
		t.Fatalf("infected share=%v, want %v", got, want)
	}
	if s.MeanInfections != 2 {
		t.Fatalf("mean=%v, want 2", s.MeanInfections)
	}
	if got, want := s.StdevInfections, math.Sqrt2; math.Abs(got-want) > 1e-12 {
		t.Fatalf("stdev=%v, want %v", got, want)
	}
	if s.MaxInfections != 3 {
		t.Fatalf("max=%d, want 3", s.MaxInfections)
	}
}

func TestSummarize_Degenerate(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 10, Width: 4})
	if s := c.Summarize(); s != (Summary{}) {
		t.Fatalf("empty corridor summary=%+v, want zero", s)
	}

	only := &Agent{ID: 1, Direction: 1, Infected: true, InfectionsCaused: 5}
	c.Enter(only, 0, 0)
	s := c.Summarize()
	if s.MeanInfections != 5 || s.StdevInfections != 0 {
		t.Fatalf("single infected agent: mean=%v stdev=%v", s.MeanInfections, s.StdevInfections)
	}
}

func TestRecords_PreserveEntryOrderAndFlags(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 10, Width: 4})
	a := &Agent{ID: 7, Direction: 1, InfectedOnEntry: true, Infected: true}
	b := &Agent{ID: 8, Direction: -1}
	c.Enter(a, 0, 0)
	c.Enter(b, 9, 1)

	recs := c.Records()
	if len(recs) != 2 || recs[0].ID != 7 || recs[1].ID != 8 {
		t.Fatalf("records out of order: %+v", recs)
	}
	if !recs[0].InfectedOnEntry || recs[1].InfectedOnEntry {
		t.Fatalf("infected-on-entry flags wrong: %+v", recs)
	}
	if recs[0].Exited || recs[1].Exited {
		t.Fatalf("active agents marked exited")
	}
}
