package leds

import "sync"

// FakeStrip records fills for test assertions. Safe for concurrent use
// because the controller writes from its own goroutine.
type FakeStrip struct {
	mu sync.Mutex

	// Fills contains every color written, in order.
	Fills []Color

	// Clears counts Clear calls.
	Clears int

	// Closed tracks if Close was called.
	Closed bool

	// FillError, if set, will be returned by Fill.
	FillError error
}

// NewFakeStrip creates a FakeStrip for testing.
func NewFakeStrip() *FakeStrip {
	return &FakeStrip{}
}

// Fill records the color.
func (f *FakeStrip) Fill(c Color) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FillError != nil {
		return f.FillError
	}
	f.Fills = append(f.Fills, c)
	return nil
}

// Clear records the clear.
func (f *FakeStrip) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Clears++
	return nil
}

// Close marks the strip as closed.
func (f *FakeStrip) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Last returns the most recent color written and whether any write happened
// since the last clear.
func (f *FakeStrip) Last() (Color, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Fills) == 0 {
		return Color{}, false
	}
	return f.Fills[len(f.Fills)-1], true
}

// Snapshot returns copies of the recorded activity.
func (f *FakeStrip) Snapshot() (fills []Color, clears int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fills = append(fills, f.Fills...)
	return fills, f.Clears
}
