// Package gpio provides single-pin GPIO control with hardware abstraction.
// Two hardware backends exist: MemPin drives the pin through the
// memory-mapped register block (fast, pin-to-register binding fixed at
// construction), and CdevPin goes through the Linux GPIO character device
// (slower, works on any gpiochip). SimPin simulates the RC charge
// behaviour of a sensor channel for testing without hardware.
package gpio

// Channel controls one physical pin used for capacitive touch sensing.
// The same pin doubles as the sensor's discharge driver, the charge-time
// input, and optionally an LED indicator between measurements.
type Channel interface {
	// DriveLow latches the output level low. The level is written before
	// any mode switch, so DriveLow followed by SetOutput never drives the
	// pin high, not even briefly.
	DriveLow()

	// DriveHigh latches the output level high (LED on).
	DriveHigh()

	// SetInput floats the pin. The external resistor then charges the
	// sensor capacitance toward supply.
	SetInput()

	// SetOutput drives the pin at the latched level.
	SetOutput()

	// ReadLevel reports whether the pin reads digital high.
	ReadLevel() bool
}

// Err returns the sticky error of a Channel backend, or nil for backends
// that cannot fail. CdevPin records kernel errors instead of returning
// them per operation, keeping the measurement hot loop free of error
// plumbing; the host loop checks here once per scan.
func Err(c Channel) error {
	if e, ok := c.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

// Default sensor pins (BCM numbering).
const (
	DefaultPinA = 26
	DefaultPinB = 16
)
