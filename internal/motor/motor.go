// Package motor drives the hub feed motors with hardware abstraction. The
// real implementation toggles an enable/direction line pair on the motor
// driver board through the Linux GPIO character device.
package motor

// State is the desired motor output.
type State struct {
	Enabled bool
	Forward bool
}

// Driver applies motor states to hardware.
type Driver interface {
	// Apply sets the motor output. Applying the zero State stops the motors.
	Apply(State) error

	// Close stops the motors and releases driver resources.
	Close() error
}

// Default BCM line offsets for the driver board.
const (
	DefaultEnablePin    = 12
	DefaultDirectionPin = 13
)
