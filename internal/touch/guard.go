package touch

import "runtime"

// Guard scopes the no-preemption region around the charge-count loop.
// The loop's iteration count is the time measurement, so any preemption
// inside the region adds jitter directly to the reading. The sampler
// enters the guard immediately before floating the pin and guarantees
// Exit on every path out of the loop.
type Guard interface {
	Enter()
	Exit()
}

// OSThreadGuard pins the calling goroutine to its OS thread for the
// duration of the region. A user-space process cannot mask hardware
// interrupts the way the loop would on a bare microcontroller, but wiring
// the goroutine to one thread removes Go scheduler migration as a jitter
// source for the counting loop.
type OSThreadGuard struct{}

func (OSThreadGuard) Enter() { runtime.LockOSThread() }
func (OSThreadGuard) Exit()  { runtime.UnlockOSThread() }

// NopGuard does nothing. Suitable for the simulated backend, where there
// is no timing to protect.
type NopGuard struct{}

func (NopGuard) Enter() {}
func (NopGuard) Exit()  {}
