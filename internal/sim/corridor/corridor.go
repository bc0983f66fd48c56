// Package corridor implements the sidewalk simulation: a bounded 2-D lattice
// that pedestrians traverse end to end in synchronous ticks, infecting each
// other by proximity.
package corridor

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"

	"corridorsim/internal/sim/grid"
)

// Corridor is a single-threaded authoritative simulation. All state must be
// accessed only from the loop goroutine (or before/after the run); external
// readers consume per-tick frames and post-run records.
type Corridor struct {
	cfg  Config
	grid *grid.Grid[*Agent]
	rng  *rand.Rand

	tick atomic.Uint64

	nextAgentID int
	roster      []*Agent // everyone who ever entered, in entry order

	// Per-tick accounting, drained into the tick log entry.
	curEntered  []int
	curExited   []int
	curInfected []int
	curDropped  int
	curAttempts [2]int // enter attempts this tick at x=0 and x=Length-1

	lastDigest string
	frame      [][]uint8

	tickLogger TickLogger
	logger     *log.Logger

	observers map[string]chan []byte
	obsJoin   chan ObserverJoinRequest
	obsLeave  chan string
	stop      chan struct{}
	stopOnce  sync.Once
}

// TickLogger receives one entry per completed tick (may be nil).
type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick            uint64 `json:"tick"`
	Entered         []int  `json:"entered,omitempty"`
	Exited          []int  `json:"exited,omitempty"`
	NewlyInfected   []int  `json:"newly_infected,omitempty"`
	Dropped         int    `json:"dropped,omitempty"`
	ArrivalAttempts [2]int `json:"arrival_attempts"`
	Active          int    `json:"active"`
	Digest          string `json:"digest"`
}

func New(cfg Config) *Corridor {
	cfg.applyDefaults()
	c := &Corridor{
		cfg:       cfg,
		grid:      grid.New[*Agent](cfg.Length, cfg.Width),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		observers: map[string]chan []byte{},
		obsJoin:   make(chan ObserverJoinRequest, 16),
		obsLeave:  make(chan string, 16),
		stop:      make(chan struct{}),
	}
	c.refreshFrame()
	return c
}

func (c *Corridor) Config() Config             { return c.cfg }
func (c *Corridor) CurrentTick() uint64        { return c.tick.Load() }
func (c *Corridor) SetTickLogger(l TickLogger) { c.tickLogger = l }

// SetLogger enables contention diagnostics; they are off by default.
func (c *Corridor) SetLogger(l *log.Logger) { c.logger = l }

func (c *Corridor) debugf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// Enter places a pending agent on the grid and activates it. A taken cell is
// normal contention: the agent stays pending and the attempt is not retried.
// Out-of-bounds targets indicate a bug in arrival logic and abort the run.
func (c *Corridor) Enter(a *Agent, x, y int) bool {
	ok, err := c.grid.Put(x, y, a)
	if err != nil {
		panic(fmt.Sprintf("corridor: enter agent %d: %v", a.ID, err))
	}
	if !ok {
		c.debugf("enter rejected: agent %d, cell (%d,%d) occupied", a.ID, x, y)
		return false
	}
	a.X, a.Y = x, y
	a.state = StateActive
	c.roster = append(c.roster, a)
	c.curEntered = append(c.curEntered, a.ID)
	return true
}

// AttemptMove applies a proposed destination. Anything farther than one step
// (Manhattan) is a protocol violation by the caller and is rejected; a taken
// cell is normal contention. A destination equal to the current position is
// rejected the same way, since the agent occupies it.
func (c *Corridor) AttemptMove(a *Agent, x, y int) bool {
	if manhattan(a.X, a.Y, x, y) > 1 {
		c.debugf("move rejected: agent %d (%d,%d)->(%d,%d) exceeds one step", a.ID, a.X, a.Y, x, y)
		return false
	}
	if c.grid.IsOccupied(x, y) {
		return false
	}
	c.grid.Relocate(x, y, a)
	a.X, a.Y = x, y
	return true
}

// Leave removes an agent standing on a boundary column and retires it. The
// agent keeps its terminal statistics but is never consulted again.
func (c *Corridor) Leave(a *Agent) bool {
	if a.X != 0 && a.X != c.cfg.Length-1 {
		c.debugf("leave rejected: agent %d not at a boundary column (x=%d)", a.ID, a.X)
		return false
	}
	c.grid.Remove(a)
	a.state = StateExited
	c.curExited = append(c.curExited, a.ID)
	return true
}

// step advances the corridor one tick: all agents active at tick start decide
// and move, then scheduled arrivals enter, then infection spreads, then the
// frame is rebuilt. Agents entering this tick are not stepped this tick.
func (c *Corridor) step() {
	nowTick := c.tick.Load()

	for _, a := range c.grid.Snapshot() {
		if a.Active() {
			a.step(c)
		}
	}

	c.curAttempts = [2]int{}
	if nowTick%uint64(c.cfg.Interarrivals) == 0 {
		c.newAgents(+1, 0)
		c.newAgents(-1, c.cfg.Length-1)
	}

	c.SpreadInfection()
	c.refreshFrame()
	c.lastDigest = c.stateDigest(nowTick)

	if c.tickLogger != nil {
		_ = c.tickLogger.WriteTick(TickLogEntry{
			Tick:            nowTick,
			Entered:         c.curEntered,
			Exited:          c.curExited,
			NewlyInfected:   c.curInfected,
			Dropped:         c.curDropped,
			ArrivalAttempts: c.curAttempts,
			Active:          c.grid.Len(),
			Digest:          c.lastDigest,
		})
	}
	c.broadcastFrame(nowTick)

	c.curEntered, c.curExited, c.curInfected = nil, nil, nil
	c.curDropped = 0

	c.tick.Add(1)
}

// StepOnce advances the corridor by a single tick with the same ordering
// semantics as Run. It is intended for deterministic replays and tests.
func (c *Corridor) StepOnce() (tick uint64, digest string) {
	tick = c.tick.Load()
	c.step()
	return tick, c.lastDigest
}

// newAgents admits one arrival batch at the given boundary column. Arrivals
// that land on an occupied cell are dropped silently.
func (c *Corridor) newAgents(direction, startX int) {
	n := c.cfg.BatchMin + c.rng.Intn(c.cfg.BatchMax-c.cfg.BatchMin+1)
	end := 0
	if direction == -1 {
		end = 1
	}
	c.curAttempts[end] += n
	for i := 0; i < n; i++ {
		a := c.spawnAgent(direction)
		if !c.Enter(a, startX, c.rng.Intn(c.cfg.Width)) {
			c.curDropped++
		}
	}
}

func (c *Corridor) spawnAgent(direction int) *Agent {
	c.nextAgentID++
	a := &Agent{ID: c.nextAgentID, Direction: direction, X: -1, Y: -1}
	if c.rng.Float64() <= c.cfg.InfectedShare {
		a.Infected = true
		a.InfectedOnEntry = true
	}
	return a
}

// lateralStep draws a sidestep direction, either side equally likely.
func (c *Corridor) lateralStep() int {
	if c.rng.Float64() < 0.5 {
		return -1
	}
	return 1
}

func (c *Corridor) clampX(x int) int { return clamp(x, 0, c.cfg.Length-1) }
func (c *Corridor) clampY(y int) int { return clamp(y, 0, c.cfg.Width-1) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func manhattan(x0, y0, x1, y1 int) int {
	return abs(x0-x1) + abs(y0-y1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
