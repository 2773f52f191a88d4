// Package status provides a thread-safe status tracker for the
// touch-sensor daemon. It is read by the HTTP handlers and serialized
// into MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/touch-sensor/internal/touch"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Backend     string
	Filter      string
	Samples     int
	Offset      int
	Threshold   int
	Broker      string
	HTTPPort    string
	WSBroker    string // Websocket broker URL for browser MQTT (empty = disabled)
}

// ChannelStatus is the displayable state of one sensor channel.
type ChannelStatus struct {
	Name     string
	Pin      int
	State    touch.State
	Sample   uint8
	Baseline uint8
	Counts   touch.EventCounts
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Channels      []ChannelStatus
	Ready         bool // all channels have completed their priming scan
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the per-channel states and readiness.
// Called from runLoop on every tick.
func (t *Tracker) Update(channels []ChannelStatus, ready bool) {
	t.mu.Lock()
	t.snap.Channels = channels
	t.snap.Ready = ready
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// ChannelsFromScan combines one scan's readings with the array's states
// and counts into displayable channel statuses. The three slices share
// the array's channel order.
func ChannelsFromScan(readings []touch.Reading, states []touch.State, counts []touch.ChannelCounts) []ChannelStatus {
	channels := make([]ChannelStatus, len(readings))
	for i, r := range readings {
		channels[i] = ChannelStatus{
			Name:     r.Channel,
			Pin:      r.Pin,
			State:    states[i],
			Sample:   r.Sample,
			Baseline: r.Baseline,
			Counts:   counts[i].Counts,
		}
	}
	return channels
}
