//go:build linux

package gpio

import (
	"fmt"

	rpi "github.com/warthog618/gpio"
)

// MemPin drives a pin through the memory-mapped BCM283x register block.
// The pin-to-register binding is computed once at construction, so every
// operation in the charge-count loop is a single register access. This is
// the backend to use for sensing: each extra instruction per loop
// iteration costs measurement resolution.
type MemPin struct {
	pin *rpi.Pin
}

// OpenMem maps the GPIO register block from /dev/gpiomem. Must be called
// once before creating MemPins.
func OpenMem() error {
	if err := rpi.Open(); err != nil {
		return fmt.Errorf("map gpio registers: %w", err)
	}
	return nil
}

// CloseMem unmaps the GPIO register block.
func CloseMem() error {
	return rpi.Close()
}

// NewMemPin creates a register-mapped pin for the given BCM number.
// The pin is left driven low, the idle state between measurements.
func NewMemPin(bcm int) (*MemPin, error) {
	p := rpi.NewPin(bcm)
	if p == nil {
		return nil, fmt.Errorf("invalid BCM pin %d", bcm)
	}
	// The external resistor is the charge path; an internal pull would
	// fight the measurement.
	p.SetPull(rpi.PullNone)
	p.Low()
	p.Output()
	return &MemPin{pin: p}, nil
}

// DriveLow latches the output level low.
func (m *MemPin) DriveLow() { m.pin.Low() }

// DriveHigh latches the output level high.
func (m *MemPin) DriveHigh() { m.pin.High() }

// SetInput floats the pin.
func (m *MemPin) SetInput() { m.pin.Input() }

// SetOutput drives the pin at the latched level.
func (m *MemPin) SetOutput() { m.pin.Output() }

// ReadLevel reports whether the pin reads high.
func (m *MemPin) ReadLevel() bool { return bool(m.pin.Read()) }

// Close returns the pin to a driven-low output, the safe idle state for a
// sensor pad that may share the pin with an LED.
func (m *MemPin) Close() error {
	m.pin.Low()
	m.pin.Output()
	return nil
}
