package sensor

import (
	"sync"
	"time"
)

// FakeSource lets tests inject edges as if they came from hardware.
type FakeSource struct {
	mu   sync.Mutex
	emit EmitFunc

	// Closed tracks if Close was called.
	Closed bool

	// StartError, if set, will be returned by Start.
	StartError error
}

// NewFakeSource creates a FakeSource for testing.
func NewFakeSource() *FakeSource {
	return &FakeSource{}
}

// Start stores the emit callback for Trigger.
func (f *FakeSource) Start(emit EmitFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartError != nil {
		return f.StartError
	}
	f.emit = emit
	return nil
}

// Trigger simulates one edge on the given channel.
func (f *FakeSource) Trigger(channel int, at time.Time) {
	f.mu.Lock()
	emit := f.emit
	f.mu.Unlock()
	if emit != nil {
		emit(channel, at)
	}
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
