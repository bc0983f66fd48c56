package corridor

// SpreadInfection runs one infection pass over the current occupants. Every
// infected agent scans the 5x5 block centered on itself, skipping its own
// cell, and rolls against each susceptible occupant with probability
// riskAt(d2). Several infected agents may roll against the same target in one
// pass; whoever succeeds first in the pass's snapshot order gets the credit,
// which is accepted nondeterminism of the model. An agent infected earlier in
// the pass spreads in the same pass once its own turn comes.
func (c *Corridor) SpreadInfection() {
	agents := c.grid.Snapshot()
	for _, a := range agents {
		a.NewlyInfected = false
	}
	for _, a := range agents {
		if !a.Infected {
			continue
		}
		for x := a.X - 2; x <= a.X+2; x++ {
			for y := a.Y - 2; y <= a.Y+2; y++ {
				if x == a.X && y == a.Y {
					continue
				}
				target, ok := c.grid.Get(x, y)
				if !ok || target.Infected {
					continue
				}
				d2 := (a.X-x)*(a.X-x) + (a.Y-y)*(a.Y-y)
				if c.rng.Float64() < c.riskAt(d2) {
					a.InfectionsCaused++
					target.Infected = true
					target.NewlyInfected = true
					c.curInfected = append(c.curInfected, target.ID)
				}
			}
		}
	}
}

// riskAt is the transmission probability at squared distance d2: the base
// probability decayed by the inverse square of the distance.
func (c *Corridor) riskAt(d2 int) float64 {
	return c.cfg.TransProb / float64(d2)
}
