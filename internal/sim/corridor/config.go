package corridor

// Config fixes a corridor's parameters for the whole run; there is no
// hot-reload.
type Config struct {
	ID     string
	Length int // cells along the travel axis
	Width  int // cells across the sidewalk

	// TransProb is the transmission probability at squared distance 1.
	TransProb float64
	// InfectedShare is the fraction of arrivals already carrying the virus.
	InfectedShare float64

	// Interarrivals is the number of ticks between arrival batches.
	Interarrivals int
	// BatchMin/BatchMax bound the uniform arrivals-per-batch draw at each end.
	BatchMin int
	BatchMax int

	TickRateHz int
	// RunTicks stops Run after this many ticks; 0 runs until canceled.
	RunTicks int
	Seed     int64
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "corridor_1"
	}
	if c.Length <= 0 {
		c.Length = 200
	}
	if c.Width <= 0 {
		c.Width = 10
	}
	if c.Interarrivals <= 0 {
		c.Interarrivals = 3
	}
	if c.BatchMin <= 0 {
		c.BatchMin = 1
	}
	if c.BatchMax < c.BatchMin {
		c.BatchMax = c.BatchMin + 2
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 10
	}
	if c.TransProb < 0 {
		c.TransProb = 0
	}
	if c.TransProb > 1 {
		c.TransProb = 1
	}
	if c.InfectedShare < 0 {
		c.InfectedShare = 0
	}
	if c.InfectedShare > 1 {
		c.InfectedShare = 1
	}
}
