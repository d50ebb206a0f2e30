//go:build !linux

package leds

import "errors"

// RealStrip is not available on non-Linux platforms.
type RealStrip struct{}

// NewRealStrip returns an error on non-Linux platforms.
func NewRealStrip(portName string, count int) (*RealStrip, error) {
	return nil, errors.New("leds: not supported on this platform (requires Linux)")
}

// Fill is not implemented on non-Linux platforms.
func (s *RealStrip) Fill(c Color) error {
	return errors.New("leds: not supported")
}

// Clear is not implemented on non-Linux platforms.
func (s *RealStrip) Clear() error {
	return errors.New("leds: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealStrip) Close() error {
	return nil
}
