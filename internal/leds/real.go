//go:build linux

package leds

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// RealStrip drives a WS2812 strip through the SPI MOSI line using the periph
// NRZ encoder. One NRZ bit becomes three SPI bits, so the port runs at 2.5 MHz
// to hit the 800 kHz pixel clock.
type RealStrip struct {
	port  spi.PortCloser
	dev   *nrzled.Dev
	count int
	buf   []byte
}

// NewRealStrip opens the SPI port (empty name selects the first available)
// and prepares an NRZ encoder for count pixels.
func NewRealStrip(portName string, count int) (*RealStrip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open spi port: %w", err)
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("init nrzled: %w", err)
	}
	return &RealStrip{
		port:  port,
		dev:   dev,
		count: count,
		buf:   make([]byte, count*3),
	}, nil
}

// Fill sets every pixel to the given color and writes the frame.
func (s *RealStrip) Fill(c Color) error {
	for i := 0; i < s.count; i++ {
		// WS2812 pixels are wired GRB.
		s.buf[i*3] = c.G
		s.buf[i*3+1] = c.R
		s.buf[i*3+2] = c.B
	}
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("write strip: %w", err)
	}
	return nil
}

// Clear turns every pixel off.
func (s *RealStrip) Clear() error {
	return s.Fill(Color{})
}

// Close releases the SPI port.
func (s *RealStrip) Close() error {
	return s.port.Close()
}
