//go:build linux

package sensor

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource reads beam-break sensors through GPIO edge events. The sensors
// idle high through a pull-up; a falling edge means the beam was interrupted
// by a ball.
type RealSource struct {
	chip  string
	pins  []int
	lines []*gpiocdev.Line
}

// NewRealSource creates a source for the given BCM line offsets.
func NewRealSource(pins []int) *RealSource {
	return &RealSource{chip: "gpiochip0", pins: pins}
}

// Start claims each line with pull-up and a falling-edge event handler.
func (s *RealSource) Start(emit EmitFunc) error {
	for i, pin := range s.pins {
		channel := i
		line, err := gpiocdev.RequestLine(s.chip, pin,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				emit(channel, time.Now())
			}))
		if err != nil {
			s.Close()
			return fmt.Errorf("request sensor line %d: %w", pin, err)
		}
		s.lines = append(s.lines, line)
	}
	return nil
}

// Close releases all claimed lines.
func (s *RealSource) Close() error {
	var firstErr error
	for _, line := range s.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.lines = nil
	return firstErr
}
