package motor

import (
	"context"
	"log"
)

// Controller applies motor states on its own goroutine so the decision loop
// never blocks on GPIO writes. Only the latest desired state matters.
type Controller struct {
	driver Driver
	ch     chan State
}

// NewController creates a Controller for the given driver.
func NewController(driver Driver) *Controller {
	return &Controller{driver: driver, ch: make(chan State, 1)}
}

// Set records the desired state, replacing any state not yet applied.
func (c *Controller) Set(s State) {
	for {
		select {
		case c.ch <- s:
			return
		default:
			select {
			case <-c.ch:
			default:
			}
		}
	}
}

// Run applies states until ctx is cancelled, then stops the motors.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if err := c.driver.Apply(State{}); err != nil {
				log.Printf("motor: stop: %v", err)
			}
			return
		case s := <-c.ch:
			if err := c.driver.Apply(s); err != nil {
				log.Printf("motor: apply: %v", err)
			}
		}
	}
}
