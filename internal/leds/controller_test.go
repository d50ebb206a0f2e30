package leds

import (
	"context"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestControllerSetAppliesColor(t *testing.T) {
	strip := NewFakeStrip()
	c := NewController(strip, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Set(Amber)
	waitFor(t, "fill", func() bool {
		got, ok := strip.Last()
		return ok && got == Amber
	})
}

func TestControllerFlashClearsAfterDuration(t *testing.T) {
	strip := NewFakeStrip()
	c := NewController(strip, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Flash(ElectricBlue, 20*time.Millisecond)
	waitFor(t, "flash fill", func() bool {
		got, ok := strip.Last()
		return ok && got == ElectricBlue
	})
	waitFor(t, "flash clear", func() bool {
		_, clears := strip.Snapshot()
		return clears >= 1
	})
}

func TestControllerSetCancelsPendingFlash(t *testing.T) {
	strip := NewFakeStrip()
	c := NewController(strip, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Flash(ElectricBlue, 50*time.Millisecond)
	waitFor(t, "flash fill", func() bool {
		got, ok := strip.Last()
		return ok && got == ElectricBlue
	})

	c.Set(Amber)
	waitFor(t, "steady fill", func() bool {
		got, ok := strip.Last()
		return ok && got == Amber
	})

	// The cancelled flash must not clear the steady color afterwards.
	time.Sleep(100 * time.Millisecond)
	if _, clears := strip.Snapshot(); clears != 0 {
		t.Errorf("strip cleared %d times after Set, want 0", clears)
	}
}

func TestControllerReportsAppliedColors(t *testing.T) {
	strip := NewFakeStrip()
	applied := make(chan Color, 8)
	c := NewController(strip, func(col Color) { applied <- col })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Set(Amber)
	select {
	case got := <-applied:
		if got != Amber {
			t.Errorf("applied %v, want %v", got, Amber)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no applied callback")
	}

	c.Off()
	select {
	case got := <-applied:
		if got != Off {
			t.Errorf("applied %v after Off, want %v", got, Off)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no applied callback for Off")
	}
}

func TestControllerClearsOnStop(t *testing.T) {
	strip := NewFakeStrip()
	c := NewController(strip, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	c.Set(Amber)
	waitFor(t, "fill", func() bool {
		_, ok := strip.Last()
		return ok
	})

	cancel()
	<-done
	if _, clears := strip.Snapshot(); clears != 1 {
		t.Errorf("strip cleared %d times on stop, want 1", clears)
	}
}

func TestColorHex(t *testing.T) {
	if got := Amber.Hex(); got != "#ffb300" {
		t.Errorf("Amber.Hex() = %s", got)
	}
	if got := Off.Hex(); got != "#000000" {
		t.Errorf("Off.Hex() = %s", got)
	}
}
