//go:build linux

package motor

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives the motor board through an enable line and a direction
// line. The board treats direction high as forward.
type RealDriver struct {
	enable    *gpiocdev.Line
	direction *gpiocdev.Line
}

// NewRealDriver claims the enable and direction lines as outputs, both low.
func NewRealDriver(enablePin, directionPin int) (*RealDriver, error) {
	enable, err := gpiocdev.RequestLine("gpiochip0", enablePin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request enable line %d: %w", enablePin, err)
	}
	direction, err := gpiocdev.RequestLine("gpiochip0", directionPin, gpiocdev.AsOutput(0))
	if err != nil {
		enable.Close()
		return nil, fmt.Errorf("request direction line %d: %w", directionPin, err)
	}
	return &RealDriver{enable: enable, direction: direction}, nil
}

// Apply sets the direction line before enabling so the board never sees a
// reversal while running.
func (d *RealDriver) Apply(s State) error {
	if !s.Enabled {
		if err := d.enable.SetValue(0); err != nil {
			return fmt.Errorf("set enable: %w", err)
		}
		return nil
	}
	dir := 0
	if s.Forward {
		dir = 1
	}
	if err := d.direction.SetValue(dir); err != nil {
		return fmt.Errorf("set direction: %w", err)
	}
	if err := d.enable.SetValue(1); err != nil {
		return fmt.Errorf("set enable: %w", err)
	}
	return nil
}

// Close stops the motors and releases the lines.
func (d *RealDriver) Close() error {
	var firstErr error
	if err := d.enable.SetValue(0); err != nil {
		firstErr = err
	}
	if err := d.enable.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.direction.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
