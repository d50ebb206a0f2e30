// Package ingest moves events produced on arbitrary goroutines into the
// hub's single decision loop through bounded queues. Producers never touch
// hub state; when a queue fills, each source applies its own backpressure
// policy.
package ingest

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bearboticsfrc/bear-hub/internal/leds"
)

// BallEvent is one qualifying sensor edge. It is transient and consumed
// exactly once by the decision loop.
type BallEvent struct {
	Channel int
	At      time.Time
}

// FrameSource identifies which lighting producer emitted a frame.
type FrameSource int

const (
	FrameConsole FrameSource = iota // sACN lighting console (fms)
	FramePalette                    // robot telemetry palette (robot_practice)
)

// Frame is one uniform strip color from a streaming lighting source.
type Frame struct {
	Color  leds.Color
	Source FrameSource
}

// CommandKind enumerates operator requests handled by the decision loop.
type CommandKind int

const (
	CmdSetMode CommandKind = iota
	CmdResetCounts
	CmdToggleMotors
	CmdToggleSimulator
)

// Command is an operator request with a reply channel for the outcome.
type Command struct {
	Kind  CommandKind
	Mode  string      // CmdSetMode only
	Reply chan Result // buffered, capacity 1
}

// Result is the decision loop's answer to a Command.
type Result struct {
	Err error
	On  bool // new state, for toggles
}

// PeerUpdate carries an asynchronous notification from a peer system. Nil
// fields are left unchanged when the update is merged.
type PeerUpdate struct {
	Period               *string // "auto" | "teleop" | "disabled"
	HubActive            *bool
	SecondsUntilInactive *float64
	MotorCommand         *string     // "forward" | "reverse" | "stop"
	LEDColor             *leds.Color // color actually written to the strip
}

// Queue capacities per source.
const (
	ballQueueCap    = 64
	frameQueueCap   = 8
	commandQueueCap = 16
	updateQueueCap  = 16
)

// ballEnqueueTimeout bounds how long a sensor producer may block when the
// ball queue is full before the event is dropped and counted.
const ballEnqueueTimeout = 50 * time.Millisecond

// DefaultDebounce is the minimum spacing between accepted edges on one
// sensor channel.
const DefaultDebounce = 10 * time.Millisecond

// Bridge owns the per-source queues feeding the decision loop. All Submit
// methods are safe to call from any goroutine and never panic after Close.
type Bridge struct {
	balls    chan BallEvent
	frames   chan Frame
	commands chan Command
	updates  chan PeerUpdate

	debounce time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastEdge map[int]time.Time

	closed        atomic.Bool
	ballsDropped  atomic.Uint64
	framesDropped atomic.Uint64
}

// NewBridge creates a Bridge with the given per-channel debounce interval.
// A nil now uses time.Now.
func NewBridge(debounce time.Duration, now func() time.Time) *Bridge {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if now == nil {
		now = time.Now
	}
	return &Bridge{
		balls:    make(chan BallEvent, ballQueueCap),
		frames:   make(chan Frame, frameQueueCap),
		commands: make(chan Command, commandQueueCap),
		updates:  make(chan PeerUpdate, updateQueueCap),
		debounce: debounce,
		now:      now,
		lastEdge: make(map[int]time.Time),
	}
}

// Balls is the decision loop's ball event queue.
func (b *Bridge) Balls() <-chan BallEvent { return b.balls }

// Frames is the decision loop's lighting frame queue.
func (b *Bridge) Frames() <-chan Frame { return b.frames }

// Commands is the decision loop's operator request queue.
func (b *Bridge) Commands() <-chan Command { return b.commands }

// Updates is the decision loop's peer notification queue.
func (b *Bridge) Updates() <-chan PeerUpdate { return b.updates }

// SubmitBall enqueues a debounced sensor edge. An edge inside the debounce
// window of the previous accepted edge on the same channel is discarded
// before queueing. When the queue is full the call blocks briefly, then
// drops the event and counts the loss so silent loss stays observable.
func (b *Bridge) SubmitBall(channel int, at time.Time) {
	if b.closed.Load() {
		return
	}

	b.mu.Lock()
	if last, ok := b.lastEdge[channel]; ok && at.Sub(last) < b.debounce {
		b.mu.Unlock()
		return
	}
	b.lastEdge[channel] = at
	b.mu.Unlock()

	ev := BallEvent{Channel: channel, At: at}
	select {
	case b.balls <- ev:
		return
	default:
	}

	t := time.NewTimer(ballEnqueueTimeout)
	defer t.Stop()
	select {
	case b.balls <- ev:
	case <-t.C:
		n := b.ballsDropped.Add(1)
		log.Printf("ingest: ball queue full, dropped event on channel %d (%d dropped total)", channel, n)
	}
}

// SubmitFrame enqueues a lighting frame, dropping the oldest queued frame
// when the queue is full. Frames are a stream; the newest one wins.
func (b *Bridge) SubmitFrame(f Frame) {
	if b.closed.Load() {
		return
	}
	for {
		select {
		case b.frames <- f:
			return
		default:
			select {
			case <-b.frames:
				b.framesDropped.Add(1)
			default:
			}
		}
	}
}

// SubmitCommand enqueues an operator request. Operator calls may wait for
// queue space. Returns false once the bridge is closed.
func (b *Bridge) SubmitCommand(cmd Command) bool {
	if b.closed.Load() {
		return false
	}
	b.commands <- cmd
	return true
}

// SubmitUpdate enqueues a peer notification, discarding it when the queue
// is full. Updates carry latest-known values; a fresher one follows.
func (b *Bridge) SubmitUpdate(u PeerUpdate) {
	if b.closed.Load() {
		return
	}
	select {
	case b.updates <- u:
	default:
	}
}

// Close stops accepting producer events. Already-queued events remain
// readable so the decision loop can drain them during shutdown.
func (b *Bridge) Close() {
	b.closed.Store(true)
}

// BallsDropped reports how many sensor events were lost to backpressure.
func (b *Bridge) BallsDropped() uint64 { return b.ballsDropped.Load() }

// FramesDropped reports how many lighting frames were dropped.
func (b *Bridge) FramesDropped() uint64 { return b.framesDropped.Load() }
