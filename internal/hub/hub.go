// Package hub is the decision core. One goroutine owns all mutable state:
// it drains the ingestion bridge, applies the mode state machine and ball
// categorization rules, and fans immutable snapshots out to the sinks.
// Producers and sinks never touch hub state directly.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/bearboticsfrc/bear-hub/internal/console"
	"github.com/bearboticsfrc/bear-hub/internal/ingest"
	"github.com/bearboticsfrc/bear-hub/internal/leds"
	"github.com/bearboticsfrc/bear-hub/internal/motor"
	"github.com/bearboticsfrc/bear-hub/internal/regmap"
	"github.com/bearboticsfrc/bear-hub/internal/statefile"
	"github.com/bearboticsfrc/bear-hub/internal/telemetry"
)

// Config holds the hub's tunables.
type Config struct {
	Identity Identity

	// DrainGrace bounds how long shutdown keeps categorizing queued ball
	// events before quiescing the sinks.
	DrainGrace time.Duration

	// StatusPoll is the connectivity flag refresh interval.
	StatusPoll time.Duration

	// MotorPoll is the motor drive refresh interval.
	MotorPoll time.Duration

	// GracePeriod is how long practice-mode period and activity values stay
	// effective after the robot's last update.
	GracePeriod time.Duration

	// AdhocFlash is how long the strip lights per ball in adhoc mode.
	AdhocFlash time.Duration

	Now func() time.Time
}

// DefaultConfig returns the field defaults for the given hub identity.
func DefaultConfig(id Identity) Config {
	return Config{
		Identity:    id,
		DrainGrace:  2 * time.Second,
		StatusPoll:  time.Second,
		MotorPoll:   50 * time.Millisecond,
		GracePeriod: 3 * time.Second,
		AdhocFlash:  time.Second,
		Now:         time.Now,
	}
}

// Deps are the hub's collaborators, passed in at construction so tests can
// substitute recording fakes.
type Deps struct {
	Bridge    *ingest.Bridge
	Lights    *leds.Controller
	Motors    *motor.Controller
	Registers regmap.Store
	Telemetry telemetry.Client
	Console   console.Receiver
	State     statefile.Store
}

// Broadcaster receives every published snapshot. Broadcast must not block.
type Broadcaster interface {
	Broadcast(Snapshot)
}

// commandTimeout bounds how long a public method waits for the decision
// loop to answer.
const commandTimeout = 5 * time.Second

// simulatedChannel is the sensor channel simulated balls arrive on.
const simulatedChannel = 0

// peerState is the latest known values from peer systems, merged from
// asynchronous updates and connectivity polls.
type peerState struct {
	period       string
	periodExpiry time.Time

	hubActive      bool
	hubActiveKnown bool
	activeExpiry   time.Time

	secondsUntilInactive float64
	motorCmd             string

	plcConnected       bool
	telemetryConnected bool
	lightingActive     bool

	ledColor leds.Color
}

// runningSet tracks which startable subsystems are currently live.
type runningSet struct {
	regServer bool
	console   bool
	telemetry bool
}

// Hub runs the decision loop. All fields below deps are owned by the loop
// goroutine; the only cross-goroutine state is the published snapshot.
type Hub struct {
	cfg  Config
	deps Deps

	mode          Mode
	active        uint64
	auto          uint64
	inactive      uint64
	miles         *milestones
	peers         peerState
	running       runningSet
	driven        motor.State
	motorToggle   bool
	simEnabled    bool
	lastPublished Snapshot

	broadcaster Broadcaster
	latest      atomic.Pointer[Snapshot]
}

// New creates a Hub, restoring mode and counters from the state store. A
// missing record starts in adhoc with zero counts; milestone flags are
// seeded from the restored count so a restart does not replay animations.
func New(cfg Config, deps Deps) *Hub {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &Hub{
		cfg:   cfg,
		deps:  deps,
		mode:  DefaultMode,
		miles: newMilestones(),
		peers: peerState{period: "disabled", motorCmd: "stop"},
	}

	rec, found, err := deps.State.Load()
	switch {
	case err != nil:
		log.Printf("hub: state load: %v", err)
	case found:
		if m, err := ParseMode(rec.Mode); err == nil {
			h.mode = m
		} else {
			log.Printf("hub: persisted %v, using %s", err, DefaultMode)
		}
		h.active = rec.ActiveCount
		h.auto = rec.AutoCount
		h.inactive = rec.InactiveCount
		h.miles.seed(h.active)
	}

	snap := h.buildSnapshot()
	h.lastPublished = snap
	h.latest.Store(&snap)
	return h
}

// AttachBroadcaster sets the snapshot fan-out sink. Must be called before
// Run.
func (h *Hub) AttachBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

// Run executes the decision loop until ctx is cancelled, then drains and
// persists. It is the only goroutine that mutates hub state.
func (h *Hub) Run(ctx context.Context) {
	if err := h.startFor(modeTable[h.mode]); err != nil {
		log.Printf("hub: start %s subsystems: %v, falling back to %s", h.mode, err, DefaultMode)
		h.mode = DefaultMode
		h.persist()
	}
	h.applyModeLighting()
	h.publish()
	log.Printf("hub: %s running, mode %s, counts active=%d auto=%d inactive=%d",
		h.cfg.Identity.Name, h.mode, h.active, h.auto, h.inactive)

	status := time.NewTicker(h.cfg.StatusPoll)
	defer status.Stop()
	motors := time.NewTicker(h.cfg.MotorPoll)
	defer motors.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case ev := <-h.deps.Bridge.Balls():
			h.handleBall(ev)
		case f := <-h.deps.Bridge.Frames():
			h.handleFrame(f)
		case cmd := <-h.deps.Bridge.Commands():
			h.handleCommand(cmd)
		case u := <-h.deps.Bridge.Updates():
			h.handleUpdate(u)
		case <-status.C:
			h.pollPeers()
		case <-motors.C:
			h.driveMotors()
		}
	}
}

// handleBall categorizes one accepted sensor edge under the mode current at
// dequeue, checks milestones, and pushes the new totals outward.
func (h *Hub) handleBall(ev ingest.BallEvent) {
	now := h.cfg.Now()
	hubActive, known := h.effectiveHubActive(now)
	switch categorize(h.mode, h.effectivePeriod(now), hubActive, known) {
	case countAuto:
		h.auto++
		h.active++
	case countInactive:
		h.inactive++
	case countActive:
		h.active++
	}

	for _, name := range h.miles.check(h.active) {
		log.Printf("hub: milestone %s at %d balls", name, h.active)
	}

	h.publishCounts()
	h.updateLocalLighting(true)
	h.publish()
}

// publishCounts pushes the totals to whichever peer the mode feeds. The
// register carries the field total; telemetry carries the active total.
func (h *Hub) publishCounts() {
	live := modeTable[h.mode]
	if live.regServer && h.running.regServer {
		h.deps.Registers.SetBallCount(h.cfg.Identity.Register, clampUint16(h.active+h.inactive))
	}
	if live.telemetry && h.running.telemetry {
		h.deps.Telemetry.PublishTotal(h.active)
	}
}

// scoreColor is the local scoring animation color for the current count.
func (h *Hub) scoreColor() leds.Color {
	switch {
	case h.active >= SuperchargedThreshold:
		return leds.ElectricBlue
	case h.active >= EnergizedThreshold:
		return leds.Amber
	default:
		return h.cfg.Identity.IdleColor
	}
}

// updateLocalLighting drives the strip when the current mode's lighting
// source is the local animation. adhoc flashes per ball over a dark strip;
// robot_teleop holds the scoring color steadily.
func (h *Hub) updateLocalLighting(ball bool) {
	if modeTable[h.mode].lighting != lightLocal {
		return
	}
	switch h.mode {
	case ModeAdhoc:
		if ball {
			h.deps.Lights.Flash(h.scoreColor(), h.cfg.AdhocFlash)
		}
	case ModeRobotTeleop:
		h.deps.Lights.Set(h.scoreColor())
	}
}

// applyModeLighting sets the strip's baseline for the current mode. Stream
// driven modes go dark until the first frame arrives.
func (h *Hub) applyModeLighting() {
	switch modeTable[h.mode].lighting {
	case lightLocal:
		if h.mode == ModeRobotTeleop {
			h.deps.Lights.Set(h.scoreColor())
		} else {
			h.deps.Lights.Off()
		}
	default:
		h.deps.Lights.Off()
	}
}

// handleFrame applies a streamed frame only when the current mode grants
// that stream the lighting sink. Exactly one source is authoritative at any
// instant.
func (h *Hub) handleFrame(f ingest.Frame) {
	owner := modeTable[h.mode].lighting
	switch f.Source {
	case ingest.FrameConsole:
		if owner != lightConsole {
			return
		}
	case ingest.FramePalette:
		if owner != lightPalette {
			return
		}
	}
	h.deps.Lights.Set(f.Color)
}

// handleUpdate merges an asynchronous peer notification. Practice mode arms
// a grace window for period and activity values so a briefly silent robot
// does not flap the categorization.
func (h *Hub) handleUpdate(u ingest.PeerUpdate) {
	now := h.cfg.Now()
	if u.Period != nil {
		h.peers.period = *u.Period
		if h.mode == ModeRobotPractice && *u.Period == "auto" {
			h.peers.periodExpiry = now.Add(h.cfg.GracePeriod)
		}
	}
	if u.HubActive != nil {
		h.peers.hubActive = *u.HubActive
		h.peers.hubActiveKnown = true
		if h.mode == ModeRobotPractice && *u.HubActive {
			h.peers.activeExpiry = now.Add(h.cfg.GracePeriod)
		}
	}
	if u.SecondsUntilInactive != nil {
		h.peers.secondsUntilInactive = *u.SecondsUntilInactive
	}
	if u.MotorCommand != nil {
		h.peers.motorCmd = *u.MotorCommand
	}
	if u.LEDColor != nil {
		h.peers.ledColor = *u.LEDColor
	}
	h.publish()
}

// handleCommand executes one operator request and answers on its reply
// channel. Commands are applied atomically relative to ball categorization.
func (h *Hub) handleCommand(cmd ingest.Command) {
	var res ingest.Result
	switch cmd.Kind {
	case ingest.CmdSetMode:
		res.Err = h.requestMode(cmd.Mode)
	case ingest.CmdResetCounts:
		res.Err = h.resetCounts()
	case ingest.CmdToggleMotors:
		res.On, res.Err = h.toggleMotors()
	case ingest.CmdToggleSimulator:
		h.simEnabled = !h.simEnabled
		res.On = h.simEnabled
		log.Printf("hub: simulator %v", h.simEnabled)
		h.publish()
	default:
		res.Err = fmt.Errorf("unknown command %d", cmd.Kind)
	}
	if cmd.Reply != nil {
		cmd.Reply <- res
	}
}

func (h *Hub) requestMode(name string) error {
	m, err := ParseMode(name)
	if err != nil {
		return err
	}
	if m == h.mode {
		return nil
	}
	return h.setMode(m)
}

// setMode executes one transition. The old mode's subsystems stop before
// the new mode's start; an activation failure restores the old set when
// possible and otherwise falls back to adhoc.
func (h *Hub) setMode(newMode Mode) error {
	old := h.mode
	h.stopExtras(modeTable[old], modeTable[newMode])

	if err := h.startFor(modeTable[newMode]); err != nil {
		if restoreErr := h.startFor(modeTable[old]); restoreErr != nil {
			log.Printf("hub: restore %s after failed switch: %v, falling back to %s",
				old, restoreErr, DefaultMode)
			h.stopExtras(modeTable[old], modeTable[DefaultMode])
			h.mode = DefaultMode
			h.motorToggle = false
		} else {
			h.stopExtras(modeTable[newMode], modeTable[old])
			h.mode = old
		}
		h.persist()
		h.applyModeLighting()
		h.publishCounts()
		h.publish()
		return fmt.Errorf("switch to %s: %w", newMode, err)
	}

	h.mode = newMode
	h.motorToggle = false
	log.Printf("hub: mode change: %s -> %s", old, newMode)
	h.persist()
	h.applyModeLighting()
	h.publishCounts()
	h.publish()
	return nil
}

// stopExtras stops every subsystem live under old but not under next, and
// clears the peer state those subsystems fed. Stop failures are logged and
// the transition continues.
func (h *Hub) stopExtras(old, next liveness) {
	if old.regServer && !next.regServer && h.running.regServer {
		if err := h.deps.Registers.Stop(); err != nil {
			log.Printf("hub: stop register server: %v", err)
		}
		h.running.regServer = false
		h.peers.plcConnected = false
		h.peers.period = "disabled"
	}
	if old.console && !next.console && h.running.console {
		h.deps.Console.Stop()
		h.running.console = false
		h.peers.lightingActive = false
	}
	if old.telemetry && !next.telemetry && h.running.telemetry {
		h.deps.Telemetry.Stop()
		h.running.telemetry = false
		h.peers.telemetryConnected = false
		h.peers.hubActiveKnown = false
		h.peers.period = "disabled"
		h.peers.motorCmd = "stop"
		h.peers.secondsUntilInactive = 0
	}
}

// startFor starts every subsystem live under the given row that is not yet
// running. The register server is required for its mode and fails the
// transition; console and telemetry degrade to a logged warning.
func (h *Hub) startFor(live liveness) error {
	if live.regServer && !h.running.regServer {
		if err := h.deps.Registers.Start(); err != nil {
			return fmt.Errorf("register server: %w", err)
		}
		h.running.regServer = true
	}
	if live.console && !h.running.console {
		if err := h.deps.Console.Start(); err != nil {
			log.Printf("hub: console receiver unavailable: %v", err)
		} else {
			h.running.console = true
		}
	}
	if live.telemetry && !h.running.telemetry {
		if err := h.deps.Telemetry.Start(); err != nil {
			log.Printf("hub: telemetry unavailable: %v", err)
		} else {
			h.running.telemetry = true
		}
	}
	return nil
}

// resetCounts zeroes the counters and milestone flags. Valid only in adhoc.
func (h *Hub) resetCounts() error {
	if h.mode != ModeAdhoc {
		return fmt.Errorf("reset only allowed in %s mode, current mode %s", ModeAdhoc, h.mode)
	}
	h.active, h.auto, h.inactive = 0, 0, 0
	h.miles.reset()
	log.Printf("hub: counts reset")
	h.persist()
	h.applyModeLighting()
	h.publish()
	return nil
}

// toggleMotors flips the operator motor toggle. Only adhoc leaves the
// motors to the operator; other modes have an authoritative peer source.
func (h *Hub) toggleMotors() (bool, error) {
	if modeTable[h.mode].motors != motorIdle {
		return false, fmt.Errorf("motors are %s-driven in %s mode", motorSourceName(modeTable[h.mode].motors), h.mode)
	}
	h.motorToggle = !h.motorToggle
	log.Printf("hub: motors toggled %v", h.motorToggle)
	h.driveMotors()
	return h.motorToggle, nil
}

func motorSourceName(s motorSource) string {
	switch s {
	case motorCoils:
		return "coil"
	case motorTelemetry:
		return "telemetry"
	default:
		return "operator"
	}
}

// pollPeers refreshes the connectivity flags and, in fms mode, reads the
// match period register. Publishes only when something changed.
func (h *Hub) pollPeers() {
	h.peers.telemetryConnected = h.running.telemetry && h.deps.Telemetry.Connected()
	h.peers.lightingActive = h.running.console && h.deps.Console.Active()
	h.peers.plcConnected = h.running.regServer && h.deps.Registers.PLCActive()
	if h.running.regServer {
		h.peers.period = h.deps.Registers.Period()
	}
	h.publish()
}

// driveMotors computes the desired motor state from the mode's authoritative
// source and hands it to the motor controller when it changed.
func (h *Hub) driveMotors() {
	var want motor.State
	switch modeTable[h.mode].motors {
	case motorCoils:
		if h.running.regServer {
			enabled, forward := h.deps.Registers.MotorCommand()
			want = motor.State{Enabled: enabled, Forward: forward}
		}
	case motorTelemetry:
		switch h.peers.motorCmd {
		case "forward":
			want = motor.State{Enabled: true, Forward: true}
		case "reverse":
			want = motor.State{Enabled: true}
		}
	case motorIdle:
		want = motor.State{Enabled: h.motorToggle, Forward: true}
	}
	if want == h.driven {
		return
	}
	h.driven = want
	h.deps.Motors.Set(want)
	h.publish()
}

// effectivePeriod is the period value categorization sees. In practice mode
// an auto period lapses once its grace window passes without refresh.
func (h *Hub) effectivePeriod(now time.Time) string {
	if h.mode == ModeRobotPractice && h.peers.period == "auto" && now.After(h.peers.periodExpiry) {
		return "teleop"
	}
	return h.peers.period
}

// effectiveHubActive is the activity value categorization sees. In practice
// mode an active hub lapses to inactive once its grace window passes.
func (h *Hub) effectiveHubActive(now time.Time) (active, known bool) {
	if h.mode == ModeRobotPractice && h.peers.hubActiveKnown && h.peers.hubActive &&
		now.After(h.peers.activeExpiry) {
		return false, true
	}
	return h.peers.hubActive, h.peers.hubActiveKnown
}

// buildSnapshot assembles the immutable published view of hub state.
func (h *Hub) buildSnapshot() Snapshot {
	return Snapshot{
		Mode:                 h.mode,
		HubName:              h.cfg.Identity.Name,
		ActiveCount:          h.active,
		AutoCount:            h.auto,
		InactiveCount:        h.inactive,
		MilestonesFired:      h.miles.firedNames(),
		PLCConnected:         h.peers.plcConnected,
		TelemetryConnected:   h.peers.telemetryConnected,
		LightingSourceActive: h.peers.lightingActive,
		MotorsRunning:        h.driven.Enabled,
		FMSPeriod:            h.peers.period,
		SecondsUntilInactive: math.Floor(h.peers.secondsUntilInactive),
		SimulatorEnabled:     h.simEnabled,
		LEDColor:             h.peers.ledColor.Hex(),
		BallsDropped:         h.deps.Bridge.BallsDropped(),
	}
}

// publish stores and broadcasts a fresh snapshot unless nothing visible
// changed since the last one.
func (h *Hub) publish() {
	snap := h.buildSnapshot()
	if snap.equal(h.lastPublished) {
		return
	}
	h.lastPublished = snap
	h.latest.Store(&snap)
	if h.broadcaster != nil {
		h.broadcaster.Broadcast(snap)
	}
}

// persist writes the durable record. Failures are logged; counting goes on.
func (h *Hub) persist() {
	rec := statefile.Record{
		Mode:          string(h.mode),
		ActiveCount:   h.active,
		AutoCount:     h.auto,
		InactiveCount: h.inactive,
	}
	if err := h.deps.State.Save(rec); err != nil {
		log.Printf("hub: state save: %v", err)
	}
}

// shutdown drains already-queued ball events within the grace period, then
// quiesces the sinks and persists the final state.
func (h *Hub) shutdown() {
	h.deps.Bridge.Close()

	grace := time.NewTimer(h.cfg.DrainGrace)
	defer grace.Stop()
drain:
	for {
		select {
		case ev := <-h.deps.Bridge.Balls():
			h.handleBall(ev)
		case <-grace.C:
			break drain
		default:
			break drain
		}
	}

	h.stopExtras(liveness{regServer: true, console: true, telemetry: true}, liveness{})
	h.deps.Lights.Off()
	h.deps.Motors.Set(motor.State{})
	h.persist()
	h.publish()
	log.Printf("hub: %s stopped, counts active=%d auto=%d inactive=%d",
		h.cfg.Identity.Name, h.active, h.auto, h.inactive)
}

// Snapshot returns the most recently published state. Safe from any
// goroutine.
func (h *Hub) Snapshot() Snapshot {
	return *h.latest.Load()
}

// SetMode requests a mode transition and waits for the outcome.
func (h *Hub) SetMode(name string) error {
	res := h.command(ingest.Command{Kind: ingest.CmdSetMode, Mode: name})
	return res.Err
}

// ResetCounts requests a counter reset and waits for the outcome.
func (h *Hub) ResetCounts() error {
	return h.command(ingest.Command{Kind: ingest.CmdResetCounts}).Err
}

// ToggleMotors flips the operator motor toggle and reports the new state.
func (h *Hub) ToggleMotors() (bool, error) {
	res := h.command(ingest.Command{Kind: ingest.CmdToggleMotors})
	return res.On, res.Err
}

// ToggleSimulator flips the ball simulator and reports the new state.
func (h *Hub) ToggleSimulator() (bool, error) {
	res := h.command(ingest.Command{Kind: ingest.CmdToggleSimulator})
	return res.On, res.Err
}

// SimulateBall injects one ball event through the normal ingestion path.
// Rejected while the simulator is disabled.
func (h *Hub) SimulateBall() error {
	if !h.Snapshot().SimulatorEnabled {
		return errors.New("simulator is disabled")
	}
	h.deps.Bridge.SubmitBall(simulatedChannel, h.cfg.Now())
	return nil
}

// command submits one operator request to the decision loop and waits for
// its reply with a bounded timeout.
func (h *Hub) command(cmd ingest.Command) ingest.Result {
	cmd.Reply = make(chan ingest.Result, 1)
	if !h.deps.Bridge.SubmitCommand(cmd) {
		return ingest.Result{Err: errors.New("hub is shutting down")}
	}
	t := time.NewTimer(commandTimeout)
	defer t.Stop()
	select {
	case res := <-cmd.Reply:
		return res
	case <-t.C:
		return ingest.Result{Err: errors.New("hub did not answer in time")}
	}
}

func clampUint16(v uint64) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
