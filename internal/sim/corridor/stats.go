package corridor

import "math"

// AgentRecord is the read-only terminal view of one agent for reporting.
type AgentRecord struct {
	ID               int
	Direction        int
	Infected         bool
	InfectedOnEntry  bool
	InfectionsCaused int
	Exited           bool
}

// Records exports every agent that ever entered, in entry order. Dropped
// arrivals (entry rejected) never entered and are not included.
func (c *Corridor) Records() []AgentRecord {
	out := make([]AgentRecord, 0, len(c.roster))
	for _, a := range c.roster {
		out = append(out, AgentRecord{
			ID:               a.ID,
			Direction:        a.Direction,
			Infected:         a.Infected,
			InfectedOnEntry:  a.InfectedOnEntry,
			InfectionsCaused: a.InfectionsCaused,
			Exited:           a.state == StateExited,
		})
	}
	return out
}

// Summary aggregates the run over the full population that ever entered.
// Mean and stdev cover infections caused per infected agent (sample stdev,
// n-1); they are zero when fewer than one or two agents were infected.
type Summary struct {
	TotalEntered    int
	TotalInfected   int
	InfectedShare   float64
	MeanInfections  float64
	StdevInfections float64
	MaxInfections   int
}

func (c *Corridor) Summarize() Summary {
	s := Summary{TotalEntered: len(c.roster)}
	var sum int
	for _, a := range c.roster {
		if !a.Infected {
			continue
		}
		s.TotalInfected++
		sum += a.InfectionsCaused
		if a.InfectionsCaused > s.MaxInfections {
			s.MaxInfections = a.InfectionsCaused
		}
	}
	if s.TotalEntered > 0 {
		s.InfectedShare = float64(s.TotalInfected) / float64(s.TotalEntered)
	}
	if s.TotalInfected > 0 {
		s.MeanInfections = float64(sum) / float64(s.TotalInfected)
	}
	if s.TotalInfected > 1 {
		var sq float64
		for _, a := range c.roster {
			if !a.Infected {
				continue
			}
			d := float64(a.InfectionsCaused) - s.MeanInfections
			sq += d * d
		}
		s.StdevInfections = math.Sqrt(sq / float64(s.TotalInfected-1))
	}
	return s
}
