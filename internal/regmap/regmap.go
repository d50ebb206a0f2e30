// Package regmap exposes the hub's register map to the field PLC over
// Modbus TCP. The hub is the server (slave); the PLC is the polling client.
// The map carries ball totals outward and the motor command and match
// period inward.
package regmap

import "time"

// Register and coil layout (0-based addresses).
const (
	RedBallCountRegister  = 0
	BlueBallCountRegister = 1
	PeriodRegister        = 2 // 0 = disabled, 1 = auto, 2 = teleop

	MotorEnableCoil    = 0
	MotorDirectionCoil = 1
)

// PeriodRegister values written by the PLC.
const (
	periodDisabled uint16 = 0
	periodAuto     uint16 = 1
	periodTeleop   uint16 = 2
)

// PLCActiveWindow is how recently the PLC must have polled a register for
// the link to count as active.
const PLCActiveWindow = time.Second

// Store is the register/coil store role the hub takes in fms mode.
type Store interface {
	// Start binds the Modbus TCP listener. Fails when the address is taken.
	Start() error

	// Stop closes the listener. Safe to call when not started.
	Stop() error

	// SetBallCount writes a ball total to the given holding register.
	SetBallCount(register int, count uint16)

	// MotorCommand reads the coil pair written by the PLC.
	MotorCommand() (enabled, forward bool)

	// Period reads the match period register written by the PLC:
	// "auto", "teleop", or "disabled".
	Period() string

	// PLCActive reports whether the PLC polled a register recently.
	PLCActive() bool
}
