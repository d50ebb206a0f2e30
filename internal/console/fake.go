package console

import (
	"sync"

	"github.com/bearboticsfrc/bear-hub/internal/ingest"
	"github.com/bearboticsfrc/bear-hub/internal/leds"
)

// FakeReceiver is a scriptable console stream for tests.
type FakeReceiver struct {
	mu      sync.Mutex
	onFrame FrameFunc

	// StartError, if set, will be returned by Start.
	StartError error

	started bool
	stops   int
	active  bool
}

// NewFakeReceiver creates a FakeReceiver for testing.
func NewFakeReceiver(onFrame FrameFunc) *FakeReceiver {
	return &FakeReceiver{onFrame: onFrame}
}

// Start marks the receiver as started.
func (f *FakeReceiver) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartError != nil {
		return f.StartError
	}
	f.started = true
	return nil
}

// Stop marks the receiver as stopped.
func (f *FakeReceiver) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
	f.active = false
	f.stops++
}

// Active returns the scripted activity flag.
func (f *FakeReceiver) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// SetActive scripts the activity flag.
func (f *FakeReceiver) SetActive(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = active
}

// Started reports whether the receiver is currently started.
func (f *FakeReceiver) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

// Stops reports how many times Stop was called.
func (f *FakeReceiver) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// Inject delivers a console frame with the given color and marks the
// stream active.
func (f *FakeReceiver) Inject(color leds.Color) {
	f.mu.Lock()
	f.active = true
	onFrame := f.onFrame
	f.mu.Unlock()
	if onFrame != nil {
		onFrame(ingest.Frame{Color: color, Source: ingest.FrameConsole})
	}
}

var _ Receiver = (*FakeReceiver)(nil)
