package motor

import "sync"

// FakeDriver records applied states for test assertions.
type FakeDriver struct {
	mu sync.Mutex

	// Applied contains every state applied, in order.
	Applied []State

	// Closed tracks if Close was called.
	Closed bool

	// ApplyError, if set, will be returned by Apply.
	ApplyError error
}

// NewFakeDriver creates a FakeDriver for testing.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Apply records the state.
func (f *FakeDriver) Apply(s State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ApplyError != nil {
		return f.ApplyError
	}
	f.Applied = append(f.Applied, s)
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Last returns the most recently applied state and whether any state was
// applied.
func (f *FakeDriver) Last() (State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Applied) == 0 {
		return State{}, false
	}
	return f.Applied[len(f.Applied)-1], true
}
