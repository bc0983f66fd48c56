package corridor

import "testing"

func TestSpreadInfection_AdjacentCertainTransmission(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 5, Width: 3, TransProb: 1.0})

	infector := &Agent{ID: 1, Direction: 1, Infected: true}
	target := &Agent{ID: 2, Direction: -1}
	c.Enter(infector, 2, 1)
	c.Enter(target, 2, 2)

	c.SpreadInfection()

	if !target.Infected || !target.NewlyInfected {
		t.Fatalf("adjacent susceptible not infected at TransProb=1: infected=%v newly=%v",
			target.Infected, target.NewlyInfected)
	}
	if infector.InfectionsCaused != 1 {
		t.Fatalf("infector credited %d infections, want 1", infector.InfectionsCaused)
	}
}

func TestSpreadInfection_SkipsOwnCell(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 5, Width: 3, TransProb: 1.0})
	a := &Agent{ID: 1, Direction: 1, Infected: true}
	c.Enter(a, 2, 1)

	// A lone infected agent must not roll against itself (zero distance).
	c.SpreadInfection()

	if a.InfectionsCaused != 0 {
		t.Fatalf("lone agent credited %d infections", a.InfectionsCaused)
	}
}

func TestSpreadInfection_OutOfRangeUntouched(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 10, Width: 3, TransProb: 1.0})
	infector := &Agent{ID: 1, Direction: 1, Infected: true}
	far := &Agent{ID: 2, Direction: -1}
	c.Enter(infector, 2, 1)
	c.Enter(far, 5, 1) // outside the 5x5 scan block

	c.SpreadInfection()

	if far.Infected {
		t.Fatalf("agent outside the scan radius was infected")
	}
}

func TestRiskAt_InverseSquareDecay(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 5, Width: 3, TransProb: 0.4})

	if got, want := c.riskAt(1), 0.4; got != want {
		t.Fatalf("riskAt(1)=%v, want %v", got, want)
	}
	// d2=4 receives exactly a quarter of the base probability.
	if got, want := c.riskAt(4), c.riskAt(1)/4; got != want {
		t.Fatalf("riskAt(4)=%v, want %v", got, want)
	}
	if got, want := c.riskAt(8), 0.05; got != want {
		t.Fatalf("riskAt(8)=%v, want %v", got, want)
	}
}

func TestSpreadInfection_NewlyFlagCoversLatestPassOnly(t *testing.T) {
	c := newTestCorridor(t, Config{Length: 5, Width: 3, TransProb: 1.0})
	infector := &Agent{ID: 1, Direction: 1, Infected: true}
	target := &Agent{ID: 2, Direction: -1}
	c.Enter(infector, 2, 1)
	c.Enter(target, 2, 2)

	c.SpreadInfection()
	if !target.NewlyInfected {
		t.Fatalf("target should be newly infected after the first pass")
	}

	c.SpreadInfection()
	if target.NewlyInfected {
		t.Fatalf("newly-infected flag must clear on the next pass")
	}
	if !target.Infected {
		t.Fatalf("infected flag must persist")
	}
}

func TestRun_InfectionMonotonicity(t *testing.T) {
	c := newTestCorridor(t, Config{
		Length:        30,
		Width:         4,
		Interarrivals: 2,
		TransProb:     0.5,
		InfectedShare: 0.3,
		Seed:          5,
	})

	infected := map[int]bool{}
	caused := map[int]int{}
	for i := 0; i < 300; i++ {
		c.StepOnce()
		for _, a := range c.roster {
			if infected[a.ID] && !a.Infected {
				t.Fatalf("tick %d: agent %d reverted from infected to susceptible", i, a.ID)
			}
			if a.InfectionsCaused < caused[a.ID] {
				t.Fatalf("tick %d: agent %d infections-caused decreased %d -> %d",
					i, a.ID, caused[a.ID], a.InfectionsCaused)
			}
			infected[a.ID] = a.Infected
			caused[a.ID] = a.InfectionsCaused
		}
	}
}
