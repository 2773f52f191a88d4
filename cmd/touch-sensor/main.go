// Command touch-sensor polls capacitive touch channels on GPIO pins and
// publishes touch events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/touch-sensor/internal/gpio"
	"github.com/sweeney/touch-sensor/internal/mqtt"
	"github.com/sweeney/touch-sensor/internal/status"
	"github.com/sweeney/touch-sensor/internal/touch"
	"github.com/sweeney/touch-sensor/internal/web"
)

type config struct {
	poll      time.Duration
	pins      string
	backend   string
	chip      string
	filter    string
	samples   uint
	offset    uint
	threshold uint
	led       bool
	broker    string
	heartbeat time.Duration
	httpAddr  string
	wsBroker  string
	readOnce  bool
}

func main() {
	var cfg config
	flag.DurationVar(&cfg.poll, "poll", 50*time.Millisecond, "Sensor polling interval")
	flag.StringVar(&cfg.pins, "pins", fmt.Sprintf("%d,%d", gpio.DefaultPinA, gpio.DefaultPinB), "Comma-separated BCM pin numbers, one per sensor channel")
	flag.StringVar(&cfg.backend, "backend", "mem", "GPIO backend: mem (register-mapped), cdev (character device) or sim")
	flag.StringVar(&cfg.chip, "chip", "gpiochip0", "gpiochip name for the cdev backend")
	flag.StringVar(&cfg.filter, "filter", "median", "Noise filter: median or average")
	flag.UintVar(&cfg.samples, "samples", 5, "Sample count per reading for the average filter (1-255)")
	flag.UintVar(&cfg.offset, "offset", 4, "Calibration offset in bits (0-8)")
	flag.UintVar(&cfg.threshold, "threshold", 4, "Touch threshold over baseline (0-255)")
	flag.BoolVar(&cfg.led, "led", false, "Drive each sensor pin high as an LED while touched")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	flag.BoolVar(&cfg.readOnce, "read", false, "Take one raw measurement per channel, print it and exit")
	flag.Parse()

	cfg.wsBroker = resolveWSBroker(cfg.wsBroker, cfg.broker)
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	pins, err := parsePins(cfg.pins)
	if err != nil {
		return fmt.Errorf("parse pins: %w", err)
	}
	filter, err := parseFilter(cfg.filter)
	if err != nil {
		return err
	}
	if cfg.samples < 1 || cfg.samples > 255 {
		return fmt.Errorf("samples must be 1-255, got %d", cfg.samples)
	}
	if cfg.offset > 8 {
		return fmt.Errorf("offset must be 0-8, got %d", cfg.offset)
	}
	if cfg.threshold > 255 {
		return fmt.Errorf("threshold must be 0-255, got %d", cfg.threshold)
	}

	channels, guard, cleanup, err := openChannels(cfg.backend, cfg.chip, pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer cleanup()

	// One-shot raw measurement mode
	if cfg.readOnce {
		for i, ch := range channels {
			sampler := touch.NewSampler(ch, guard)
			fmt.Printf("pin %d: %d\n", pins[i], sampler.MeasureOnce())
			if err := gpio.Err(ch); err != nil {
				return fmt.Errorf("read pin %d: %w", pins[i], err)
			}
		}
		return nil
	}

	cal := touch.Calibrator{Offset: uint8(cfg.offset), Threshold: uint8(cfg.threshold)}
	cfgs := make([]touch.ChannelConfig, len(channels))
	for i, ch := range channels {
		cfgs[i] = touch.ChannelConfig{
			Name:    fmt.Sprintf("pad%d", i),
			Pin:     pins[i],
			IO:      ch,
			Filter:  filter,
			Samples: uint8(cfg.samples),
			LED:     cfg.led,
		}
	}
	array := touch.NewArray(cal, guard, cfgs, time.Now())

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Backend:     cfg.backend,
		Filter:      string(filter),
		Samples:     int(cfg.samples),
		Offset:      int(cfg.offset),
		Threshold:   int(cfg.threshold),
		Broker:      cfg.broker,
		HTTPPort:    cfg.httpAddr,
		WSBroker:    cfg.wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: poll=%v pins=%v backend=%s filter=%s offset=%d threshold=%d broker=%s",
		cfg.poll, pins, cfg.backend, filter, cfg.offset, cfg.threshold, cfg.broker)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	health := func() error {
		for i, ch := range channels {
			if err := gpio.Err(ch); err != nil {
				return fmt.Errorf("pin %d: %w", pins[i], err)
			}
		}
		return nil
	}

	return runLoop(array, publisher, publisher, tracker, health, cfg.heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(array *touch.Array, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, health func() error, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			readings, events := array.Scan(t)
			if health != nil {
				if err := health(); err != nil {
					log.Printf("gpio error: %v", err)
					continue
				}
			}

			for _, event := range events {
				log.Printf("event: %s %s (sample=%d baseline=%d)", event.Type, event.Channel, event.Sample, event.Baseline)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if hbData := array.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v counts=%v", hbData.Uptime, formatCounts(hbData.Counts))

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(status.ChannelsFromScan(readings, array.States(), array.CountsSnapshot()), array.Primed())
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(status.ChannelsFromScan(readings, array.States(), array.CountsSnapshot()), array.Primed())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// openChannels builds the configured GPIO backend for the given pins.
// The returned cleanup releases every pin and the backend itself.
func openChannels(backend, chip string, pins []int) ([]gpio.Channel, touch.Guard, func(), error) {
	switch backend {
	case "mem":
		if err := gpio.OpenMem(); err != nil {
			return nil, nil, nil, err
		}
		var mems []*gpio.MemPin
		for _, pin := range pins {
			p, err := gpio.NewMemPin(pin)
			if err != nil {
				for _, m := range mems {
					m.Close()
				}
				gpio.CloseMem()
				return nil, nil, nil, err
			}
			mems = append(mems, p)
		}
		channels := make([]gpio.Channel, len(mems))
		for i, m := range mems {
			channels[i] = m
		}
		cleanup := func() {
			for _, m := range mems {
				m.Close()
			}
			gpio.CloseMem()
		}
		return channels, touch.OSThreadGuard{}, cleanup, nil

	case "cdev":
		var cdevs []*gpio.CdevPin
		for _, pin := range pins {
			p, err := gpio.NewCdevPin(chip, pin)
			if err != nil {
				for _, c := range cdevs {
					c.Close()
				}
				return nil, nil, nil, err
			}
			cdevs = append(cdevs, p)
		}
		channels := make([]gpio.Channel, len(cdevs))
		for i, c := range cdevs {
			channels[i] = c
		}
		cleanup := func() {
			for _, c := range cdevs {
				c.Close()
			}
		}
		return channels, touch.OSThreadGuard{}, cleanup, nil

	case "sim":
		// Stable dry-run channel: charges at tick 20 every measurement.
		channels := make([]gpio.Channel, len(pins))
		for i := range pins {
			channels[i] = gpio.NewSimPin(20)
		}
		return channels, touch.NopGuard{}, func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown backend %q", backend)
}

// parsePins parses a comma-separated BCM pin list, rejecting duplicates.
func parsePins(s string) ([]int, error) {
	var pins []int
	seen := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pin, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid pin %q", part)
		}
		if pin < 0 {
			return nil, fmt.Errorf("invalid pin %d", pin)
		}
		if seen[pin] {
			return nil, fmt.Errorf("duplicate pin %d", pin)
		}
		seen[pin] = true
		pins = append(pins, pin)
	}
	if len(pins) == 0 {
		return nil, fmt.Errorf("no pins configured")
	}
	return pins, nil
}

func parseFilter(s string) (touch.FilterMode, error) {
	switch s {
	case "median":
		return touch.FilterMedian, nil
	case "average":
		return touch.FilterAverage, nil
	}
	return "", fmt.Errorf("unknown filter %q (median or average)", s)
}

func formatCounts(counts []touch.ChannelCounts) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s=%d/%d", c.Channel, c.Counts.Touches, c.Counts.Releases)
	}
	return strings.Join(parts, " ")
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
