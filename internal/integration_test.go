package internal

import (
	"context"
	"testing"
	"time"

	"github.com/bearboticsfrc/bear-hub/internal/console"
	"github.com/bearboticsfrc/bear-hub/internal/hub"
	"github.com/bearboticsfrc/bear-hub/internal/ingest"
	"github.com/bearboticsfrc/bear-hub/internal/leds"
	"github.com/bearboticsfrc/bear-hub/internal/motor"
	"github.com/bearboticsfrc/bear-hub/internal/regmap"
	"github.com/bearboticsfrc/bear-hub/internal/sensor"
	"github.com/bearboticsfrc/bear-hub/internal/statefile"
	"github.com/bearboticsfrc/bear-hub/internal/telemetry"
)

// harness runs the full stack on fakes: sensor edges enter through the real
// bridge, the real decision loop owns state, and the recording fakes stand in
// for every peer.
type harness struct {
	h      *hub.Hub
	bridge *ingest.Bridge
	src    *sensor.FakeSource
	strip  *leds.FakeStrip
	driver *motor.FakeDriver
	regs   *regmap.FakeStore
	tel    *telemetry.FakeClient
	cons   *console.FakeReceiver
	state  *statefile.MemStore

	cancel context.CancelFunc
	done   chan struct{}
}

func startHarness(t *testing.T, rec *statefile.Record) *harness {
	t.Helper()
	ha := &harness{
		src:    sensor.NewFakeSource(),
		strip:  leds.NewFakeStrip(),
		driver: motor.NewFakeDriver(),
		regs:   regmap.NewFakeStore(),
		state:  &statefile.MemStore{},
		done:   make(chan struct{}),
	}
	ha.bridge = ingest.NewBridge(time.Millisecond, nil)
	ha.tel = telemetry.NewFakeClient(ha.bridge.SubmitUpdate, ha.bridge.SubmitFrame)
	ha.cons = console.NewFakeReceiver(ha.bridge.SubmitFrame)
	if rec != nil {
		ha.state.Rec = *rec
		ha.state.Exists = true
	}

	lights := leds.NewController(ha.strip, nil)
	motors := motor.NewController(ha.driver)

	cfg := hub.DefaultConfig(hub.RedHub)
	cfg.DrainGrace = 200 * time.Millisecond
	cfg.StatusPoll = 20 * time.Millisecond
	cfg.MotorPoll = 10 * time.Millisecond
	ha.h = hub.New(cfg, hub.Deps{
		Bridge:    ha.bridge,
		Lights:    lights,
		Motors:    motors,
		Registers: ha.regs,
		Telemetry: ha.tel,
		Console:   ha.cons,
		State:     ha.state,
	})

	if err := ha.src.Start(ha.bridge.SubmitBall); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ha.cancel = cancel
	sinkCtx, stopSinks := context.WithCancel(context.Background())
	go lights.Run(sinkCtx)
	go motors.Run(sinkCtx)
	go func() {
		ha.h.Run(ctx)
		stopSinks()
		close(ha.done)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-ha.done:
		case <-time.After(5 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return ha
}

func (ha *harness) stop(t *testing.T) {
	t.Helper()
	ha.cancel()
	select {
	case <-ha.done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSensorEdgesBecomeCounts(t *testing.T) {
	ha := startHarness(t, nil)

	base := time.Now()
	for i := 0; i < 4; i++ {
		ha.src.Trigger(i, base)
	}
	// A bounce inside the debounce window on channel 0 must not count.
	ha.src.Trigger(0, base.Add(100*time.Microsecond))

	waitFor(t, "4 counted balls", func() bool {
		return ha.h.Snapshot().ActiveCount == 4
	})
	if snap := ha.h.Snapshot(); snap.ActiveCount != 4 {
		t.Errorf("active=%d, want 4", snap.ActiveCount)
	}
}

func TestFMSFlowRegisterAndMotors(t *testing.T) {
	ha := startHarness(t, &statefile.Record{Mode: "fms"})

	waitFor(t, "register server start", ha.regs.Started)

	// The PLC writes the auto period and the motor coils; the hub counts
	// auto and spins the motors.
	ha.regs.SetPeriod("auto")
	ha.regs.SetCoil(regmap.MotorEnableCoil, true)
	ha.regs.SetCoil(regmap.MotorDirectionCoil, true)

	waitFor(t, "period pickup", func() bool {
		return ha.h.Snapshot().FMSPeriod == "auto"
	})
	ha.src.Trigger(0, time.Now())
	waitFor(t, "auto count", func() bool {
		return ha.h.Snapshot().AutoCount == 1
	})
	if got := ha.regs.Register(regmap.RedBallCountRegister); got != 1 {
		t.Errorf("ball count register = %d, want 1", got)
	}
	waitFor(t, "motors running", func() bool {
		s, ok := ha.driver.Last()
		return ok && s.Enabled && s.Forward
	})
}

func TestTelemetryFlowPublishesTotals(t *testing.T) {
	ha := startHarness(t, &statefile.Record{Mode: "robot_teleop"})

	waitFor(t, "telemetry start", ha.tel.Started)

	ha.src.Trigger(0, time.Now())
	waitFor(t, "published total", func() bool {
		totals := ha.tel.Totals()
		return len(totals) == 1 && totals[0] == 1
	})

	// The robot commands the motors over telemetry.
	ha.tel.Inject(ingest.PeerUpdate{MotorCommand: strPtr("forward")})
	waitFor(t, "motors forward", func() bool {
		s, ok := ha.driver.Last()
		return ok && s.Enabled && s.Forward
	})
}

func TestModeChangeOverPublicAPI(t *testing.T) {
	ha := startHarness(t, nil)

	if err := ha.h.SetMode("fms"); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	waitFor(t, "fms subsystems", func() bool {
		return ha.regs.Started() && ha.cons.Started()
	})
	if got := ha.state.Last().Mode; got != "fms" {
		t.Errorf("persisted mode %q, want fms", got)
	}

	if err := ha.h.SetMode("adhoc"); err != nil {
		t.Fatalf("SetMode back: %v", err)
	}
	waitFor(t, "fms subsystems stopped", func() bool {
		return !ha.regs.Started() && !ha.cons.Started()
	})
}

func TestConsoleFramesDriveStripInFMS(t *testing.T) {
	ha := startHarness(t, &statefile.Record{Mode: "fms"})
	waitFor(t, "console receiver start", ha.cons.Started)

	magenta := leds.Color{R: 255, B: 255}
	ha.cons.Inject(magenta)
	waitFor(t, "console frame on strip", func() bool {
		c, ok := ha.strip.Last()
		return ok && c == magenta
	})
}

func TestShutdownPersistsStateAndStopsPeers(t *testing.T) {
	ha := startHarness(t, nil)

	base := time.Now()
	for i := 0; i < 3; i++ {
		ha.src.Trigger(i, base)
	}
	waitFor(t, "counted balls", func() bool {
		return ha.h.Snapshot().ActiveCount == 3
	})

	ha.stop(t)

	rec := ha.state.Last()
	if rec.ActiveCount != 3 || rec.Mode != "adhoc" {
		t.Errorf("persisted record %+v", rec)
	}
}

func strPtr(s string) *string { return &s }
