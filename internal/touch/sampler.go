// Package touch implements the capacitive touch measurement pipeline:
// single-pin charge-time sampling, the average and median-of-three noise
// filters, and the adaptive baseline calibrator. Hardware is reached only
// through gpio.Channel, so the whole pipeline runs unmodified against the
// simulated backend in tests.
package touch

import "github.com/sweeney/touch-sensor/internal/gpio"

// Saturated is the sample value returned when the pin never reads high
// within the counting budget: an open circuit, a disconnected sensor, or
// an extreme capacitance. It is a valid terminal reading, not an error.
const Saturated uint8 = 255

// Sampler measures charge time on one channel.
type Sampler struct {
	pin   gpio.Channel
	guard Guard
}

// NewSampler creates a Sampler for the given channel. A nil guard means
// the counting loop runs unguarded (simulation).
func NewSampler(pin gpio.Channel, guard Guard) *Sampler {
	if guard == nil {
		guard = NopGuard{}
	}
	return &Sampler{pin: pin, guard: guard}
}

// MeasureOnce takes one raw sample: the number of poll iterations the
// sensor capacitance needed to charge through the external resistor up to
// the input high level. Higher values mean slower charging. Returns
// Saturated if the level never went high within the 8-bit budget.
//
// The channel is left as a driven output, ready for LED use or the next
// discharge. Use Average or Median3 for a noise-filtered reading.
func (s *Sampler) MeasureOnce() uint8 {
	// Discharge the sensor cap through the pin sink. The level is latched
	// before the mode switch so the pin never drives high.
	s.pin.DriveLow()
	s.pin.SetOutput()

	counter := s.countCharge()

	// Back to a driven state (still low from the discharge write).
	s.pin.SetOutput()

	// The counter starts at 1, so the iteration count is counter-1. On
	// overflow the counter is 0 and this yields 255.
	return counter - 1
}

// countCharge floats the pin and counts reads until the level goes high
// or the 8-bit counter wraps. The loop is bounded: 255 increments at most,
// so it is its own timeout.
func (s *Sampler) countCharge() uint8 {
	s.guard.Enter()
	defer s.guard.Exit()

	s.pin.SetInput()

	// Counter starts at 1; 0 is reserved as the overflow sentinel.
	counter := uint8(1)
	for !s.pin.ReadLevel() && counter != 0 {
		counter++
	}
	return counter
}
