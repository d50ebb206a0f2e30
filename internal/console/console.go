// Package console receives the lighting console's sACN (E1.31) stream.
// DMX slots 1-3 carry one RGB triple applied uniformly to the whole strip.
// The stream is live only in fms mode.
package console

import (
	"github.com/bearboticsfrc/bear-hub/internal/ingest"
)

// DefaultUniverse is the sACN universe the console transmits on.
const DefaultUniverse uint16 = 1

// FrameFunc receives decoded console frames. It is called from the receiver
// goroutine and must not block.
type FrameFunc func(ingest.Frame)

// Receiver is the hub's view of the console stream.
type Receiver interface {
	// Start begins listening. Fails when the socket cannot be bound.
	Start() error

	// Stop stops listening. Safe to call when not started.
	Stop()

	// Active reports whether the stream is currently live.
	Active() bool
}
