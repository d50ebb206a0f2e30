package leds

// NullStrip is a no-op strip used when running without hardware.
type NullStrip struct{}

// Fill does nothing.
func (NullStrip) Fill(Color) error { return nil }

// Clear does nothing.
func (NullStrip) Clear() error { return nil }

// Close does nothing.
func (NullStrip) Close() error { return nil }
