// Package protocol defines the observer wire surface: the read-only frame
// and summary messages a rendering or statistics client consumes. Observers
// never mutate simulation state.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeFrame     = "FRAME"
	TypeSummary   = "SUMMARY"
)

// Cell categories in a frame, one per grid cell.
const (
	CellEmpty         uint8 = 0
	CellSusceptible   uint8 = 1
	CellInfected      uint8 = 2
	CellNewlyInfected uint8 = 3
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string         `json:"protocol_version"`
	CorridorID      string         `json:"corridor_id"`
	Tick            uint64         `json:"tick"`
	CorridorParams  CorridorParams `json:"corridor_params"`
}

type CorridorParams struct {
	Length        int     `json:"length"`
	Width         int     `json:"width"`
	TickRateHz    int     `json:"tick_rate_hz"`
	TransProb     float64 `json:"trans_prob"`
	InfectedShare float64 `json:"infected_share"`
	Interarrivals int     `json:"interarrivals"`
	Seed          int64   `json:"seed"`
}

// Server -> Client. Sent every tick. Cells is indexed [y][x] and holds one
// cell category per coordinate, regenerated in full from the active agents.
// Rows are []int, not []uint8: encoding/json renders a []uint8 as a base64
// string, and the wire contract is a plain integer matrix.
type FrameMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Active          int     `json:"active"`
	Cells           [][]int `json:"cells"`
}

// Server -> Client. Sent once when a bounded run completes.
type SummaryMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	TotalEntered    int     `json:"total_entered"`
	TotalInfected   int     `json:"total_infected"`
	InfectedShare   float64 `json:"infected_share"`
	MeanInfections  float64 `json:"mean_infections"`
	StdevInfections float64 `json:"stdev_infections"`
}
