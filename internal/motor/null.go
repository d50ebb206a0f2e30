package motor

// NullDriver is a no-op driver used when running without hardware.
type NullDriver struct{}

// Apply does nothing.
func (NullDriver) Apply(State) error { return nil }

// Close does nothing.
func (NullDriver) Close() error { return nil }
