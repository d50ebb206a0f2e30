package regmap

import "sync"

// FakeStore is an in-memory register map for tests.
type FakeStore struct {
	mu sync.Mutex

	// StartError, if set, will be returned by Start.
	StartError error

	started   bool
	stops     int
	registers map[int]uint16
	coils     map[int]bool
	plcActive bool
	period    string
}

// NewFakeStore creates a FakeStore for testing.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		registers: make(map[int]uint16),
		coils:     make(map[int]bool),
		period:    "disabled",
	}
}

// Start marks the store as started.
func (f *FakeStore) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartError != nil {
		return f.StartError
	}
	f.started = true
	return nil
}

// Stop marks the store as stopped.
func (f *FakeStore) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
	f.stops++
	return nil
}

// SetBallCount records the register write.
func (f *FakeStore) SetBallCount(register int, count uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers[register] = count
}

// MotorCommand returns the scripted coil pair.
func (f *FakeStore) MotorCommand() (enabled, forward bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coils[MotorEnableCoil], f.coils[MotorDirectionCoil]
}

// Period returns the scripted period.
func (f *FakeStore) Period() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.period
}

// PLCActive returns the scripted activity flag.
func (f *FakeStore) PLCActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plcActive
}

// Started reports whether the store is currently started.
func (f *FakeStore) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

// Stops reports how many times Stop was called.
func (f *FakeStore) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// Register returns the last value written to a holding register.
func (f *FakeStore) Register(register int) uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers[register]
}

// SetCoil scripts a coil value, as written by the PLC.
func (f *FakeStore) SetCoil(address int, value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coils[address] = value
}

// SetPeriod scripts the period register, as written by the PLC.
func (f *FakeStore) SetPeriod(period string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.period = period
}

// SetPLCActive scripts the PLC link activity flag.
func (f *FakeStore) SetPLCActive(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plcActive = active
}

var _ Store = (*FakeStore)(nil)
