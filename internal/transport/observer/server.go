// Package observer serves read-only corridor frames over websocket. Sessions
// only ever consume post-tick state; nothing on this surface can mutate the
// simulation.
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"corridorsim/internal/protocol"
	"corridorsim/internal/sim/corridor"
)

type Server struct {
	corridor *corridor.Corridor
	log      *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(c *corridor.Corridor, logger *log.Logger) *Server {
	return &Server{
		corridor: c,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// BootstrapHandler serves the run parameters a renderer needs before
// subscribing to frames.
func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		cfg := s.corridor.Config()
		resp := protocol.BootstrapResponse{
			ProtocolVersion: protocol.Version,
			CorridorID:      cfg.ID,
			Tick:            s.corridor.CurrentTick(),
			CorridorParams: protocol.CorridorParams{
				Length:        cfg.Length,
				Width:         cfg.Width,
				TickRateHz:    cfg.TickRateHz,
				TransProb:     cfg.TransProb,
				InfectedShare: cfg.InfectedShare,
				Interarrivals: cfg.Interarrivals,
				Seed:          cfg.Seed,
			},
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// WSHandler upgrades the connection, expects a SUBSCRIBE handshake, then
// streams one frame per tick until the client goes away.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub protocol.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			closePolicy(conn, protocol.ErrProtoBadRequest)
			return
		}
		if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != protocol.Version {
			closePolicy(conn, "expected SUBSCRIBE")
			return
		}

		maxQ := sub.MaxQueue
		if maxQ <= 0 {
			maxQ = 8
		}
		if maxQ > 64 {
			maxQ = 64
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		out := make(chan []byte, maxQ)

		select {
		case s.corridor.ObserverJoin() <- corridor.ObserverJoinRequest{SessionID: sid, Out: out}:
		default:
			s.log.Printf("observer %s rejected: join queue full", sid)
			closeBusy(conn)
			return
		}
		s.log.Printf("observer %s subscribed (queue %d)", sid, maxQ)
		defer func() {
			select {
			case s.corridor.ObserverLeave() <- sid:
			default:
				// Loop is stopping; nothing else to do.
			}
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-out:
					if !ok {
						writeErr <- nil
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop only detects disconnects; observers have nothing to say
		// after the handshake.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		s.log.Printf("observer %s disconnected", sid)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func closeBusy(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
}
