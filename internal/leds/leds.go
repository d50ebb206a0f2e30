// Package leds drives the addressable LED strip with hardware abstraction.
// The real implementation pushes WS2812 frames over SPI.
// The null and fake implementations allow running and testing without hardware.
package leds

import "fmt"

// Color is a single RGB pixel value. All pixels on the strip carry the same
// color; per-pixel addressing is not needed by the hub.
type Color struct {
	R, G, B uint8
}

// Scoring palette.
var (
	Off          = Color{}
	Amber        = Color{R: 255, G: 179}
	ElectricBlue = Color{G: 207, B: 255}
)

// Hex returns the #rrggbb form used in status payloads.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Strip sets pixels on an LED strip.
type Strip interface {
	// Fill sets every pixel to the given color and latches the frame.
	Fill(c Color) error

	// Clear turns every pixel off immediately.
	Clear() error

	// Close releases the underlying device.
	Close() error
}

// DefaultCount is the number of pixels fitted per deployment.
const DefaultCount = 300
