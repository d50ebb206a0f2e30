// Package sensor provides the beam-break ball sensor source with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The null and fake implementations allow running and testing without
// hardware.
package sensor

import "time"

// EmitFunc receives one qualifying edge. It is called from the GPIO event
// goroutine and must not block.
type EmitFunc func(channel int, at time.Time)

// Source produces ball events for the hub.
type Source interface {
	// Start begins delivering edges to emit.
	Start(emit EmitFunc) error

	// Close releases sensor resources.
	Close() error
}

// DefaultPins are the BCM line offsets for the four sensor channels.
var DefaultPins = []int{23, 24, 25, 16}
