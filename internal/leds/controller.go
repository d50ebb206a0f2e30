package leds

import (
	"context"
	"log"
	"time"
)

// command is a single lighting instruction applied by the controller goroutine.
type command struct {
	color Color
	flash time.Duration // >0: show color for the duration, then clear
	off   bool
}

// Controller serializes strip I/O on its own goroutine so the decision loop
// never blocks on SPI writes. The latest command wins; intermediate commands
// may be skipped while a write is in progress.
type Controller struct {
	strip   Strip
	cmds    chan command
	onApply func(Color)
}

// NewController creates a Controller for the given strip. onApply, if
// non-nil, is called with each color actually written to the strip so the
// hub can surface it in status snapshots; it must not block.
func NewController(strip Strip, onApply func(Color)) *Controller {
	return &Controller{
		strip:   strip,
		cmds:    make(chan command, 8),
		onApply: onApply,
	}
}

// Set shows a steady color.
func (c *Controller) Set(color Color) {
	c.submit(command{color: color})
}

// Flash shows a color for the given duration, then clears the strip.
func (c *Controller) Flash(color Color, d time.Duration) {
	c.submit(command{color: color, flash: d})
}

// Off clears the strip.
func (c *Controller) Off() {
	c.submit(command{off: true})
}

// submit enqueues a command, dropping the oldest queued command when the
// queue is full. Lighting is a stream; only the newest instruction matters.
func (c *Controller) submit(cmd command) {
	for {
		select {
		case c.cmds <- cmd:
			return
		default:
			select {
			case <-c.cmds:
			default:
			}
		}
	}
}

// Run applies commands until ctx is cancelled, then clears the strip.
func (c *Controller) Run(ctx context.Context) {
	var flashTimer *time.Timer
	var flashC <-chan time.Time
	stopFlash := func() {
		if flashTimer != nil {
			flashTimer.Stop()
			flashTimer = nil
			flashC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopFlash()
			c.clear()
			return

		case <-flashC:
			stopFlash()
			c.clear()

		case cmd := <-c.cmds:
			stopFlash()
			if cmd.off {
				c.clear()
				continue
			}
			if err := c.strip.Fill(cmd.color); err != nil {
				log.Printf("leds: fill: %v", err)
				continue
			}
			c.applied(cmd.color)
			if cmd.flash > 0 {
				flashTimer = time.NewTimer(cmd.flash)
				flashC = flashTimer.C
			}
		}
	}
}

func (c *Controller) clear() {
	if err := c.strip.Clear(); err != nil {
		log.Printf("leds: clear: %v", err)
		return
	}
	c.applied(Off)
}

func (c *Controller) applied(color Color) {
	if c.onApply != nil {
		c.onApply(color)
	}
}
