package corridor

// Lifecycle tracks an agent from creation to exit. A pending agent has never
// held a cell; an exited one never will again.
type Lifecycle uint8

const (
	StatePending Lifecycle = iota
	StateActive
	StateExited
)

// Movement policy weights. The branch they belong to is chosen by the
// priority cascade in step, not by these values.
const (
	pAdvanceNearNeighbor = 0.6 // branch 3: advance vs. sidestep
	pForwardClear        = 0.7 // branch 4: forward
	pBackwardClear       = 0.1 // branch 4: backward
)

// Agent is one pedestrian. Position is owned by the corridor: the agent only
// proposes destinations and the corridor applies the ones that are valid.
type Agent struct {
	ID        int
	Direction int // +1 walks toward x=Length-1, -1 toward x=0

	X, Y int // undefined until the agent enters

	Infected         bool
	NewlyInfected    bool // set by the most recent infection pass only
	InfectedOnEntry  bool
	InfectionsCaused int

	state Lifecycle
}

func (a *Agent) State() Lifecycle { return a.state }
func (a *Agent) Active() bool     { return a.state == StateActive }

// step runs the per-tick decision cascade, top to bottom, first match only:
// exit at the destination boundary, sidestep when blocked ahead, mostly
// advance when flanked, otherwise wander with a forward bias. Every proposed
// destination is clamped before submission; the corridor rejects anything a
// neighbor occupies. Agents observe only occupancy, never who occupies.
func (a *Agent) step(c *Corridor) {
	if (a.X == 0 && a.Direction == -1) || (a.X == c.cfg.Length-1 && a.Direction == 1) {
		c.Leave(a)
		return
	}

	switch {
	case c.grid.IsOccupied(a.X+a.Direction, a.Y):
		c.AttemptMove(a, a.X, c.clampY(a.Y+c.lateralStep()))

	case c.grid.IsOccupied(a.X, a.Y+1) || c.grid.IsOccupied(a.X, a.Y-1):
		if c.rng.Float64() < pAdvanceNearNeighbor {
			c.AttemptMove(a, c.clampX(a.X+a.Direction), a.Y)
		} else {
			c.AttemptMove(a, a.X, c.clampY(a.Y+c.lateralStep()))
		}

	default:
		x, y := a.X, a.Y
		switch r := c.rng.Float64(); {
		case r < pForwardClear:
			x += a.Direction
		case r < pForwardClear+pBackwardClear:
			x -= a.Direction
		default:
			y += c.lateralStep()
		}
		c.AttemptMove(a, c.clampX(x), c.clampY(y))
	}
}
