package touch

import (
	"time"

	"github.com/sweeney/touch-sensor/internal/gpio"
)

// State is the logical touch state of a channel.
type State string

const (
	StateTouched  State = "TOUCHED"
	StateReleased State = "RELEASED"
)

// EventType represents a touch state transition.
type EventType string

const (
	EventTouch   EventType = "TOUCH"
	EventRelease EventType = "RELEASE"
)

// FilterMode selects the noise filter applied per scan.
type FilterMode string

const (
	FilterAverage FilterMode = "average"
	FilterMedian  FilterMode = "median"
)

// ChannelConfig describes one sensor channel.
type ChannelConfig struct {
	Name    string // e.g. "pad0"
	Pin     int    // BCM number, informational
	IO      gpio.Channel
	Filter  FilterMode
	Samples uint8 // sample count for FilterAverage, >= 1
	LED     bool  // drive the pin high between scans while touched
}

// Reading is the outcome of one channel in one scan cycle.
type Reading struct {
	Channel  string
	Pin      int
	Sample   uint8
	Baseline uint8
	Touched  bool
}

// Event represents a touch state transition to be published.
type Event struct {
	Timestamp time.Time
	Channel   string
	Pin       int
	Type      EventType
	Sample    uint8
	Baseline  uint8
}

// EventCounts tracks the transitions seen on one channel since startup.
type EventCounts struct {
	Touches  int
	Releases int
}

// ChannelCounts pairs a channel name with its event counts.
type ChannelCounts struct {
	Channel string
	Counts  EventCounts
}

// HeartbeatData carries the periodic liveness report.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    []ChannelCounts
}

type sensorChannel struct {
	cfg     ChannelConfig
	sampler *Sampler
	ref     Reference
	state   State
	primed  bool
	counts  EventCounts
}

// Array owns a set of sensor channels and runs the per-cycle sampling
// contract: every channel is cleared to a driven-low output before any
// channel is sampled, then each channel is filtered and calibrated in
// turn, and finally the LED outputs are driven from the fresh decisions.
//
// The clear-all pass is a precondition of the measurement, not a
// nicety: a neighbouring pin still driving its LED high would leave that
// channel's capacitor charged and corrupt its discharge step.
type Array struct {
	cal           Calibrator
	channels      []*sensorChannel
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewArray creates an Array over the given channels. All channels share
// one Calibrator configuration and one guard; each gets its own Reference,
// starting Uncalibrated.
func NewArray(cal Calibrator, guard Guard, cfgs []ChannelConfig, startTime time.Time) *Array {
	a := &Array{
		cal:           cal,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
	for _, cfg := range cfgs {
		a.channels = append(a.channels, &sensorChannel{
			cfg:     cfg,
			sampler: NewSampler(cfg.IO, guard),
			ref:     Uncalibrated,
			state:   StateReleased,
		})
	}
	return a
}

// Scan runs one full sampling cycle and returns the per-channel readings
// plus any touch state transitions. The first cycle per channel only
// calibrates and emits nothing: the uncalibrated reference makes the
// wrapping decision arithmetic fire spuriously until the first snap has
// run (see Calibrator.Evaluate).
func (a *Array) Scan(now time.Time) ([]Reading, []Event) {
	// LEDs off first, on every channel, before sampling any channel.
	for _, ch := range a.channels {
		ch.cfg.IO.DriveLow()
		ch.cfg.IO.SetOutput()
	}

	readings := make([]Reading, 0, len(a.channels))
	var events []Event
	for _, ch := range a.channels {
		sample := ch.sample()
		baseline := a.cal.Baseline(ch.ref)
		touched := a.cal.Evaluate(sample, &ch.ref)

		readings = append(readings, Reading{
			Channel:  ch.cfg.Name,
			Pin:      ch.cfg.Pin,
			Sample:   sample,
			Baseline: baseline,
			Touched:  touched,
		})

		// The priming scan only calibrates. Its decision ran against the
		// uncalibrated reference, where the wrapping arithmetic fires
		// spuriously, so the channel stays in its released state and a
		// held touch surfaces one cycle later.
		if !ch.primed {
			ch.primed = true
			continue
		}

		state := StateReleased
		if touched {
			state = StateTouched
		}
		if state == ch.state {
			continue
		}
		ch.state = state

		ev := Event{
			Timestamp: now,
			Channel:   ch.cfg.Name,
			Pin:       ch.cfg.Pin,
			Sample:    sample,
			Baseline:  baseline,
		}
		if touched {
			ev.Type = EventTouch
			ch.counts.Touches++
		} else {
			ev.Type = EventRelease
			ch.counts.Releases++
		}
		events = append(events, ev)
	}

	// Drive indicators from the fresh decisions.
	for _, ch := range a.channels {
		if !ch.cfg.LED {
			continue
		}
		if ch.state == StateTouched {
			ch.cfg.IO.DriveHigh()
		} else {
			ch.cfg.IO.DriveLow()
		}
	}

	return readings, events
}

func (ch *sensorChannel) sample() uint8 {
	if ch.cfg.Filter == FilterMedian {
		return ch.sampler.Median3()
	}
	return ch.sampler.Average(ch.cfg.Samples)
}

// Primed reports whether every channel has completed its first scan.
func (a *Array) Primed() bool {
	for _, ch := range a.channels {
		if !ch.primed {
			return false
		}
	}
	return len(a.channels) > 0
}

// States returns the current per-channel touch states, in channel order.
func (a *Array) States() []State {
	states := make([]State, len(a.channels))
	for i, ch := range a.channels {
		states[i] = ch.state
	}
	return states
}

// CountsSnapshot returns the per-channel event counts, in channel order.
func (a *Array) CountsSnapshot() []ChannelCounts {
	counts := make([]ChannelCounts, len(a.channels))
	for i, ch := range a.channels {
		counts[i] = ChannelCounts{Channel: ch.cfg.Name, Counts: ch.counts}
	}
	return counts
}

// References returns the current per-channel reference values, in channel
// order. Read-only view for status reporting.
func (a *Array) References() []Reference {
	refs := make([]Reference, len(a.channels))
	for i, ch := range a.channels {
		refs[i] = ch.ref
	}
	return refs
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil before the first scan, if
// the interval has not elapsed, or if interval is <= 0 (disabled).
func (a *Array) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if !a.Primed() {
		return nil
	}
	if now.Sub(a.lastHeartbeat) < interval {
		return nil
	}

	a.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(a.startTime),
		Counts:    a.CountsSnapshot(),
	}
}
