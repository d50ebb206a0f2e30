// Command field-hub runs the scoring hub controller: it counts balls from
// the beam-break sensors, drives the LED strip and feed motors for the
// current operating mode, speaks Modbus to the field PLC and MQTT to the
// robot, and serves the operator dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
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
	"github.com/bearboticsfrc/bear-hub/internal/web"
)

type options struct {
	hub             string
	noHardware      bool
	debounce        time.Duration
	httpAddr        string
	modbusAddr      string
	telemetryServer string
	sacnUniverse    uint16
	ledCount        int
	spiPort         string
	stateFile       string
	drainGrace      time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.hub, "hub", "", "Hub identity: red or blue (empty derives from hostname)")
	flag.BoolVar(&opts.noHardware, "no-hardware", false, "Use null sensor, LED, and motor drivers")
	flag.DurationVar(&opts.debounce, "debounce", ingest.DefaultDebounce, "Per-channel sensor debounce")
	flag.StringVar(&opts.httpAddr, "http", ":8080", "Dashboard HTTP address")
	flag.StringVar(&opts.modbusAddr, "modbus", ":502", "Modbus TCP listen address (fms mode)")
	flag.StringVar(&opts.telemetryServer, "telemetry-server", "tcp://10.40.68.2:1883", "Robot telemetry broker URL")
	universe := flag.Uint("sacn-universe", uint(console.DefaultUniverse), "sACN universe of the lighting console")
	flag.IntVar(&opts.ledCount, "led-count", leds.DefaultCount, "Number of pixels on the strip")
	flag.StringVar(&opts.spiPort, "spi", "", "SPI port for the LED strip (empty selects the first)")
	flag.StringVar(&opts.stateFile, "state-file", "/var/lib/field-hub/state.json", "Durable state file")
	flag.DurationVar(&opts.drainGrace, "drain-grace", 2*time.Second, "Shutdown drain grace period")
	flag.Parse()
	opts.sacnUniverse = uint16(*universe)

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	hostname, _ := os.Hostname()
	identity, err := hub.ResolveIdentity(opts.hub, hostname)
	if err != nil {
		return err
	}

	bridge := ingest.NewBridge(opts.debounce, nil)

	// Hardware collaborators, real or null per -no-hardware.
	var (
		strip  leds.Strip
		driver motor.Driver
		src    sensor.Source
	)
	if opts.noHardware {
		strip = leds.NullStrip{}
		driver = motor.NullDriver{}
		src = sensor.NullSource{}
		log.Printf("running without hardware")
	} else {
		strip, err = leds.NewRealStrip(opts.spiPort, opts.ledCount)
		if err != nil {
			return fmt.Errorf("init led strip: %w", err)
		}
		driver, err = motor.NewRealDriver(motor.DefaultEnablePin, motor.DefaultDirectionPin)
		if err != nil {
			strip.Close()
			return fmt.Errorf("init motor driver: %w", err)
		}
		src = sensor.NewRealSource(sensor.DefaultPins)
	}
	defer strip.Close()
	defer driver.Close()

	lights := leds.NewController(strip, func(c leds.Color) {
		bridge.SubmitUpdate(ingest.PeerUpdate{LEDColor: &c})
	})
	motors := motor.NewController(driver)

	cfg := hub.DefaultConfig(identity)
	cfg.DrainGrace = opts.drainGrace
	h := hub.New(cfg, hub.Deps{
		Bridge:    bridge,
		Lights:    lights,
		Motors:    motors,
		Registers: regmap.NewRealStore(opts.modbusAddr, nil),
		Telemetry: telemetry.NewRealClient(opts.telemetryServer, identity.Name, bridge.SubmitUpdate, bridge.SubmitFrame),
		Console:   console.NewRealReceiver(opts.sacnUniverse, bridge.SubmitFrame),
		State:     statefile.NewFileStore(opts.stateFile),
	})

	srv := web.New(opts.httpAddr, h)
	h.AttachBroadcaster(srv)

	if err := src.Start(bridge.SubmitBall); err != nil {
		return fmt.Errorf("start sensors: %w", err)
	}
	defer src.Close()

	// Sink controllers own the hardware I/O goroutines. They stop after the
	// hub has queued its final off commands.
	sinkCtx, stopSinks := context.WithCancel(context.Background())
	var sinks sync.WaitGroup
	sinks.Add(2)
	go func() {
		defer sinks.Done()
		lights.Run(sinkCtx)
	}()
	go func() {
		defer sinks.Done()
		motors.Run(sinkCtx)
	}()

	ln, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		stopSinks()
		sinks.Wait()
		return fmt.Errorf("bind dashboard listener on %s: %w", opts.httpAddr, err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("dashboard server error: %v", err)
		}
	}()
	log.Printf("dashboard listening on %s", opts.httpAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("dashboard shutdown: %v", err)
	}
	stopSinks()
	sinks.Wait()
	return nil
}
