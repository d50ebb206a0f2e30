package telemetry

import (
	"sync"

	"github.com/bearboticsfrc/bear-hub/internal/ingest"
)

// FakeClient records telemetry activity for tests and lets them inject
// subscription traffic.
type FakeClient struct {
	mu       sync.Mutex
	onUpdate UpdateFunc
	onFrame  FrameFunc

	// StartError, if set, will be returned by Start.
	StartError error

	started   bool
	stops     int
	connected bool
	totals    []uint64
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient(onUpdate UpdateFunc, onFrame FrameFunc) *FakeClient {
	return &FakeClient{onUpdate: onUpdate, onFrame: onFrame}
}

// Start marks the client as started.
func (f *FakeClient) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartError != nil {
		return f.StartError
	}
	f.started = true
	return nil
}

// Stop marks the client as stopped.
func (f *FakeClient) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
	f.connected = false
	f.stops++
}

// PublishTotal records the published total.
func (f *FakeClient) PublishTotal(count uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totals = append(f.totals, count)
}

// Connected returns the scripted connection state.
func (f *FakeClient) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// SetConnected scripts the connection state.
func (f *FakeClient) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

// Started reports whether the client is currently started.
func (f *FakeClient) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

// Stops reports how many times Stop was called.
func (f *FakeClient) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// Totals returns a copy of the published totals.
func (f *FakeClient) Totals() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.totals...)
}

// Inject delivers a peer update as if it arrived from a subscription.
func (f *FakeClient) Inject(u ingest.PeerUpdate) {
	f.mu.Lock()
	onUpdate := f.onUpdate
	f.mu.Unlock()
	if onUpdate != nil {
		onUpdate(u)
	}
}

// InjectFrame delivers a palette frame as if it arrived from a
// subscription.
func (f *FakeClient) InjectFrame(frame ingest.Frame) {
	f.mu.Lock()
	onFrame := f.onFrame
	f.mu.Unlock()
	if onFrame != nil {
		onFrame(frame)
	}
}

var _ Client = (*FakeClient)(nil)
