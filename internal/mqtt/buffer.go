package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO holding messages while the broker
// connection is down. When full, the oldest message is dropped: a stale
// touch event is worth less than a fresh one. Not safe for concurrent
// use — RealPublisher serializes access.
type ringBuffer struct {
	buf     []bufferedMsg
	tail    int // oldest message
	count   int
	dropped bool // a message was lost since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == len(r.buf) {
		if !r.dropped {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", len(r.buf))
			r.dropped = true
		}
		// Overwrite the oldest and move the tail past it.
		r.buf[r.tail] = msg
		r.tail = (r.tail + 1) % len(r.buf)
		return
	}
	r.buf[(r.tail+r.count)%len(r.buf)] = msg
	r.count++
}

// drainAll returns the buffered messages oldest-first and empties the buffer.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	out := make([]bufferedMsg, r.count)
	for i := range out {
		out[i] = r.buf[(r.tail+i)%len(r.buf)]
	}

	r.tail = 0
	r.count = 0
	r.dropped = false
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
