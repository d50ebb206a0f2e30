package ingest

import (
	"testing"
	"time"

	"github.com/bearboticsfrc/bear-hub/internal/leds"
)

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestDebounceSameChannel(t *testing.T) {
	b := NewBridge(10*time.Millisecond, nil)

	b.SubmitBall(0, base)
	b.SubmitBall(0, base.Add(5*time.Millisecond))  // inside the window
	b.SubmitBall(0, base.Add(15*time.Millisecond)) // outside

	if got := len(b.Balls()); got != 2 {
		t.Errorf("queued %d events, want 2", got)
	}
}

func TestDebounceChannelsIndependent(t *testing.T) {
	b := NewBridge(10*time.Millisecond, nil)

	b.SubmitBall(0, base)
	b.SubmitBall(1, base.Add(time.Millisecond))
	b.SubmitBall(2, base.Add(2*time.Millisecond))

	if got := len(b.Balls()); got != 3 {
		t.Errorf("queued %d events, want 3", got)
	}
}

func TestBallBackpressureDropsAndCounts(t *testing.T) {
	b := NewBridge(time.Nanosecond, nil)

	// Fill the queue without draining, alternating channels past debounce.
	at := base
	for i := 0; i < ballQueueCap; i++ {
		at = at.Add(time.Millisecond)
		b.SubmitBall(i%4, at)
	}
	if dropped := b.BallsDropped(); dropped != 0 {
		t.Fatalf("dropped %d while filling, want 0", dropped)
	}

	b.SubmitBall(0, at.Add(time.Millisecond))
	if dropped := b.BallsDropped(); dropped != 1 {
		t.Errorf("dropped %d, want 1", dropped)
	}
	if got := len(b.Balls()); got != ballQueueCap {
		t.Errorf("queued %d events, want %d", got, ballQueueCap)
	}
}

func TestFrameDropOldest(t *testing.T) {
	b := NewBridge(0, nil)

	for i := 0; i < frameQueueCap+2; i++ {
		b.SubmitFrame(Frame{Color: leds.Color{R: uint8(i)}, Source: FrameConsole})
	}

	if dropped := b.FramesDropped(); dropped != 2 {
		t.Errorf("dropped %d frames, want 2", dropped)
	}
	first := <-b.Frames()
	if first.Color.R != 2 {
		t.Errorf("first queued frame is %d, want 2 (oldest two dropped)", first.Color.R)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	b := NewBridge(0, nil)
	b.SubmitBall(0, base)
	b.Close()

	b.SubmitBall(1, base.Add(time.Second))
	b.SubmitFrame(Frame{})
	b.SubmitUpdate(PeerUpdate{})
	if ok := b.SubmitCommand(Command{Kind: CmdResetCounts}); ok {
		t.Error("SubmitCommand accepted after Close")
	}

	// The event queued before Close stays drainable.
	if got := len(b.Balls()); got != 1 {
		t.Errorf("queued %d events, want 1", got)
	}
	if got := len(b.Frames()); got != 0 {
		t.Errorf("queued %d frames after close, want 0", got)
	}
}

func TestUpdateDiscardWhenFull(t *testing.T) {
	b := NewBridge(0, nil)

	for i := 0; i < updateQueueCap+3; i++ {
		v := float64(i)
		b.SubmitUpdate(PeerUpdate{SecondsUntilInactive: &v})
	}
	if got := len(b.Updates()); got != updateQueueCap {
		t.Errorf("queued %d updates, want %d", got, updateQueueCap)
	}
}
