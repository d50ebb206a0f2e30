package hub

import "fmt"

// Mode is the hub's operating configuration. Exactly one mode is active; it
// selects which peer subsystems are live and which source owns lighting and
// motors.
type Mode string

const (
	ModeFMS           Mode = "fms"
	ModeAdhoc         Mode = "adhoc"
	ModeRobotTeleop   Mode = "robot_teleop"
	ModeRobotPractice Mode = "robot_practice"
)

// DefaultMode is used when no mode has been persisted.
const DefaultMode = ModeAdhoc

// ParseMode validates an operator-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeFMS, ModeAdhoc, ModeRobotTeleop, ModeRobotPractice:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// lightSource identifies which producer owns the lighting sink in a mode.
type lightSource int

const (
	lightLocal   lightSource = iota // scoring animation from the decision loop
	lightConsole                    // sACN console stream
	lightPalette                    // robot telemetry palette
)

// motorSource identifies which signal drives the motors in a mode.
type motorSource int

const (
	motorIdle      motorSource = iota // operator toggle only
	motorCoils                        // PLC coil pair
	motorTelemetry                    // telemetry motor command
)

// liveness lists which subsystems a mode keeps running and which sources are
// authoritative. Transitions are driven purely from diffs between rows.
type liveness struct {
	regServer bool
	console   bool
	telemetry bool
	lighting  lightSource
	motors    motorSource
}

var modeTable = map[Mode]liveness{
	ModeFMS:           {regServer: true, console: true, lighting: lightConsole, motors: motorCoils},
	ModeAdhoc:         {lighting: lightLocal, motors: motorIdle},
	ModeRobotTeleop:   {telemetry: true, lighting: lightLocal, motors: motorTelemetry},
	ModeRobotPractice: {telemetry: true, lighting: lightPalette, motors: motorTelemetry},
}
