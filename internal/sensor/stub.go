//go:build !linux

package sensor

import "errors"

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns a stub on non-Linux platforms.
func NewRealSource(pins []int) *RealSource {
	return &RealSource{}
}

// Start is not implemented on non-Linux platforms.
func (s *RealSource) Start(emit EmitFunc) error {
	return errors.New("sensor: not supported on this platform (requires Linux)")
}

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error {
	return nil
}
