//go:build !linux

package motor

import "errors"

// RealDriver is not available on non-Linux platforms.
type RealDriver struct{}

// NewRealDriver returns an error on non-Linux platforms.
func NewRealDriver(enablePin, directionPin int) (*RealDriver, error) {
	return nil, errors.New("motor: not supported on this platform (requires Linux)")
}

// Apply is not implemented on non-Linux platforms.
func (d *RealDriver) Apply(s State) error {
	return errors.New("motor: not supported")
}

// Close is not implemented on non-Linux platforms.
func (d *RealDriver) Close() error {
	return nil
}
