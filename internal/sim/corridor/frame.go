package corridor

import "corridorsim/internal/protocol"

// refreshFrame rebuilds the dense Width x Length cell matrix from the active
// agents. The frame is regenerated in full every tick; observers only ever
// see complete post-tick states.
func (c *Corridor) refreshFrame() {
	cells := make([][]uint8, c.cfg.Width)
	for y := range cells {
		cells[y] = make([]uint8, c.cfg.Length)
	}
	for _, a := range c.grid.Snapshot() {
		cat := protocol.CellSusceptible
		switch {
		case a.NewlyInfected:
			cat = protocol.CellNewlyInfected
		case a.Infected:
			cat = protocol.CellInfected
		}
		cells[a.Y][a.X] = cat
	}
	c.frame = cells
}

// Frame returns a copy of the most recent post-tick frame, indexed [y][x].
// It must only be read between ticks, never while a tick is in progress.
func (c *Corridor) Frame() [][]uint8 {
	out := make([][]uint8, len(c.frame))
	for y, row := range c.frame {
		out[y] = append([]uint8(nil), row...)
	}
	return out
}
