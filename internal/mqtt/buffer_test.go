package mqtt

import (
	"fmt"
	"testing"
)

func msg(i int) bufferedMsg {
	return bufferedMsg{topic: Topic, payload: []byte(fmt.Sprintf("m%d", i)), qos: 0}
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %v", got)
	}
	if rb.len() != 0 {
		t.Errorf("len: got %d, want 0", rb.len())
	}
}

func TestRingBufferFIFOOrder(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.push(msg(i))
	}
	if rb.len() != 5 {
		t.Fatalf("len: got %d, want 5", rb.len())
	}

	out := rb.drainAll()
	if len(out) != 5 {
		t.Fatalf("drained %d messages, want 5", len(out))
	}
	for i, m := range out {
		want := fmt.Sprintf("m%d", i)
		if string(m.payload) != want {
			t.Errorf("message %d: got %q, want %q", i, m.payload, want)
		}
	}
	if rb.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", rb.len())
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	rb := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.push(msg(i))
	}

	out := rb.drainAll()
	if len(out) != 3 {
		t.Fatalf("drained %d messages, want 3", len(out))
	}
	// m0 and m1 were dropped.
	for i, m := range out {
		want := fmt.Sprintf("m%d", i+2)
		if string(m.payload) != want {
			t.Errorf("message %d: got %q, want %q", i, m.payload, want)
		}
	}
}

func TestRingBufferReusableAfterDrain(t *testing.T) {
	rb := newRingBuffer(4)
	for i := 0; i < 6; i++ { // wraps
		rb.push(msg(i))
	}
	rb.drainAll()

	rb.push(msg(7))
	rb.push(msg(8))
	out := rb.drainAll()
	if len(out) != 2 {
		t.Fatalf("drained %d messages, want 2", len(out))
	}
	if string(out[0].payload) != "m7" || string(out[1].payload) != "m8" {
		t.Errorf("got %q, %q, want m7, m8", out[0].payload, out[1].payload)
	}
}

func TestRingBufferKeepsMessageAttributes(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(bufferedMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	out := rb.drainAll()
	if len(out) != 1 {
		t.Fatalf("drained %d messages, want 1", len(out))
	}
	m := out[0]
	if m.topic != TopicSystem || m.qos != 1 || !m.retained {
		t.Errorf("attributes lost: %+v", m)
	}
}
