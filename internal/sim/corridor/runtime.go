package corridor

import (
	"context"
	"encoding/json"
	"time"

	"corridorsim/internal/protocol"
)

// ObserverJoinRequest attaches a read-only frame consumer. Frames are
// dropped, never queued unboundedly, when the consumer falls behind.
type ObserverJoinRequest struct {
	SessionID string
	Out       chan []byte
}

func (c *Corridor) ObserverJoin() chan<- ObserverJoinRequest { return c.obsJoin }
func (c *Corridor) ObserverLeave() chan<- string             { return c.obsLeave }

// Run drives the tick loop until the context is canceled, Stop is called, or
// the configured run length completes. Each tick is atomic: observers only
// ever see fully settled post-tick frames.
func (c *Corridor) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(c.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stop:
			return nil
		case req := <-c.obsJoin:
			c.observers[req.SessionID] = req.Out
		case id := <-c.obsLeave:
			delete(c.observers, id)
		case <-ticker.C:
			c.step()
			if c.cfg.RunTicks > 0 && c.tick.Load() >= uint64(c.cfg.RunTicks) {
				c.broadcastSummary()
				return nil
			}
		}
	}
}

// Stop ends the run loop. Safe to call more than once.
func (c *Corridor) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Corridor) broadcastFrame(nowTick uint64) {
	if len(c.observers) == 0 {
		return
	}
	cells := make([][]int, len(c.frame))
	for y, row := range c.frame {
		r := make([]int, len(row))
		for x, v := range row {
			r[x] = int(v)
		}
		cells[y] = r
	}
	msg := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Active:          c.grid.Len(),
		Cells:           cells,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, out := range c.observers {
		sendLatest(out, b)
	}
}

func (c *Corridor) broadcastSummary() {
	if len(c.observers) == 0 {
		return
	}
	s := c.Summarize()
	msg := protocol.SummaryMsg{
		Type:            protocol.TypeSummary,
		ProtocolVersion: protocol.Version,
		Tick:            c.tick.Load(),
		TotalEntered:    s.TotalEntered,
		TotalInfected:   s.TotalInfected,
		InfectedShare:   s.InfectedShare,
		MeanInfections:  s.MeanInfections,
		StdevInfections: s.StdevInfections,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, out := range c.observers {
		sendFinal(out, b)
	}
}

// sendFinal delivers a one-shot terminal message, evicting buffered frames
// until it fits. Only the loop goroutine sends on observer channels, so the
// eviction always frees a slot.
func sendFinal(ch chan []byte, b []byte) {
	for {
		select {
		case ch <- b:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// sendLatest prefers fresh frames: if the consumer's queue is full, one stale
// message is dropped to make room.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
