package console

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Hundemeier/go-sacn/sacn"

	"github.com/bearboticsfrc/bear-hub/internal/ingest"
	"github.com/bearboticsfrc/bear-hub/internal/leds"
)

// RealReceiver listens for multicast E1.31 packets on one universe.
type RealReceiver struct {
	universe uint16
	onFrame  FrameFunc
	now      func() time.Time

	recv *sacn.ReceiverSocket

	// lastSeen holds UnixNano of the newest packet, 0 when the stream has
	// timed out or never started.
	lastSeen atomic.Int64
}

// NewRealReceiver creates a receiver for the given universe. onFrame is
// called from the receiver goroutine.
func NewRealReceiver(universe uint16, onFrame FrameFunc) *RealReceiver {
	return &RealReceiver{
		universe: universe,
		onFrame:  onFrame,
		now:      time.Now,
	}
}

// Start binds the sACN socket and joins the universe's multicast group.
func (r *RealReceiver) Start() error {
	if r.recv != nil {
		return nil
	}
	recv, err := sacn.NewReceiverSocket("", nil)
	if err != nil {
		return fmt.Errorf("console: bind sacn socket: %w", err)
	}
	recv.SetOnChangeCallback(r.onChange)
	recv.SetTimeoutCallback(func(universe uint16) {
		if universe == r.universe {
			r.lastSeen.Store(0)
		}
	})
	recv.Start()
	recv.JoinUniverse(r.universe)
	r.recv = recv
	log.Printf("console: listening on sacn universe %d", r.universe)
	return nil
}

// onChange fires only when the DMX data differs from the previous packet.
// Stream loss during a steady color is caught by the timeout callback, which
// zeroes lastSeen.
func (r *RealReceiver) onChange(_, packet sacn.DataPacket) {
	if packet.Universe() != r.universe {
		return
	}
	data := packet.Data()
	if len(data) < 3 {
		return
	}
	r.lastSeen.Store(r.now().UnixNano())
	r.onFrame(ingest.Frame{
		Color:  leds.Color{R: data[0], G: data[1], B: data[2]},
		Source: ingest.FrameConsole,
	})
}

// Stop leaves the universe and closes the socket.
func (r *RealReceiver) Stop() {
	if r.recv == nil {
		return
	}
	r.recv.LeaveUniverse(r.universe)
	r.recv.Close()
	r.recv = nil
	r.lastSeen.Store(0)
	log.Printf("console: receiver stopped")
}

// Active reports whether the stream is live. E1.31 retransmits a steady
// color without triggering change callbacks, so packet recency is not a
// liveness signal; the receiver's source-loss timeout zeroes lastSeen a few
// seconds after packets actually stop.
func (r *RealReceiver) Active() bool {
	return r.lastSeen.Load() != 0
}

var _ Receiver = (*RealReceiver)(nil)
