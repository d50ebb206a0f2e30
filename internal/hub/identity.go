package hub

import (
	"fmt"
	"strings"

	"github.com/bearboticsfrc/bear-hub/internal/leds"
	"github.com/bearboticsfrc/bear-hub/internal/regmap"
)

// Identity is the per-deployment hub configuration: which alliance hub this
// is, which ball-count register it owns, and its idle strip color.
type Identity struct {
	Name      string
	Register  int
	IdleColor leds.Color
}

var (
	RedHub = Identity{
		Name:      "RedHub",
		Register:  regmap.RedBallCountRegister,
		IdleColor: leds.Color{R: 255},
	}
	BlueHub = Identity{
		Name:      "BlueHub",
		Register:  regmap.BlueBallCountRegister,
		IdleColor: leds.Color{B: 255},
	}
)

// ResolveIdentity picks the hub identity from the -hub flag, falling back to
// the hostname when the flag is empty. Hostnames containing "blue" select the
// blue hub; anything else is red.
func ResolveIdentity(flagValue, hostname string) (Identity, error) {
	switch strings.ToLower(flagValue) {
	case "red":
		return RedHub, nil
	case "blue":
		return BlueHub, nil
	case "":
		if strings.Contains(strings.ToLower(hostname), "blue") {
			return BlueHub, nil
		}
		return RedHub, nil
	default:
		return Identity{}, fmt.Errorf("unknown hub %q (want red or blue)", flagValue)
	}
}
