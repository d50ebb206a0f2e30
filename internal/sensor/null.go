package sensor

// NullSource never emits. Used when running without hardware.
type NullSource struct{}

// Start does nothing.
func (NullSource) Start(EmitFunc) error { return nil }

// Close does nothing.
func (NullSource) Close() error { return nil }
