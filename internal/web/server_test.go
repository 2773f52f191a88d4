package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/touch-sensor/internal/status"
	"github.com/sweeney/touch-sensor/internal/touch"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:      50,
		HeartbeatMs: 900000,
		Backend:     "mem",
		Filter:      "median",
		Offset:      4,
		Threshold:   4,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPPort:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func update(tr *status.Tracker) {
	tr.Update([]status.ChannelStatus{
		{Name: "pad0", Pin: 26, State: touch.StateTouched, Sample: 30, Baseline: 10,
			Counts: touch.EventCounts{Touches: 5, Releases: 4}},
		{Name: "pad1", Pin: 16, State: touch.StateReleased, Sample: 12, Baseline: 12},
	}, true)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	update(tr)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if len(sj.Status.Channels) != 2 {
		t.Fatalf("channels: got %d, want 2", len(sj.Status.Channels))
	}
	if sj.Status.Channels[0].State != "TOUCHED" || sj.Status.Channels[0].Sample != 30 {
		t.Errorf("pad0: got %+v", sj.Status.Channels[0])
	}
	if sj.Status.Channels[0].Touches != 5 {
		t.Errorf("pad0 touches: got %d, want 5", sj.Status.Channels[0].Touches)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Config.Backend != "mem" {
		t.Errorf("Config.Backend: got %q, want mem", sj.Status.Config.Backend)
	}
}

func TestJSONUnknownStateBeforePriming(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update([]status.ChannelStatus{{Name: "pad0", Pin: 26}}, false)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Channels[0].State != "UNKNOWN" {
		t.Errorf("state before priming: got %q, want UNKNOWN", sj.Status.Channels[0].State)
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false")
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	update(tr)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	for _, want := range []string{"Touch Sensor", "pad0", "TOUCHED", "pad1", "RELEASED", "tcp://192.168.1.200:1883"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "mqtt.connect") {
		t.Error("live script must be absent without a websocket broker")
	}
}

func TestIndexPageLiveScript(t *testing.T) {
	start := time.Now()
	tr := status.NewTracker(start, status.Config{WSBroker: "ws://192.168.1.200:9001"})
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ws://192.168.1.200:9001") {
		t.Error("live script should embed the websocket broker URL")
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
