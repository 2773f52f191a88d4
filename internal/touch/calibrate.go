package touch

// Reference is the per-channel calibration state: the tracked no-touch
// charge time, held at 2^offset times the sample resolution so the upward
// creep can be finer than one sample unit. Each channel owns exactly one
// Reference, updated once per scan cycle by Evaluate.
type Reference uint16

// Uncalibrated is the initial Reference. It is maximal, so the first real
// sample lands at or below the baseline and snaps the reference to the
// true environmental level in a single cycle.
const Uncalibrated Reference = 0xFFFF

// Calibrator turns filtered samples into touch decisions while adapting
// the channel's baseline. The update is asymmetric: the reference falls
// instantly when the environment level drops (snap) but rises only one
// unit per cycle (cool down). Slow drift of temperature, humidity or
// component aging is tracked, while a real touch, being fast and large
// by comparison, cannot pull the baseline up after itself.
type Calibrator struct {
	// Offset is the number of bits the Reference is right-shifted to
	// produce the 8-bit baseline, 0 to 8. Larger offsets slow the upward
	// creep relative to the sample scale.
	Offset uint8

	// Threshold is the minimum amount a sample must exceed the baseline
	// by to count as a touch.
	Threshold uint8
}

// Evaluate reports whether sample indicates a touch and updates ref.
//
// The decision subtracts the baseline from the sample in wrapping 8-bit
// arithmetic. When the sample is below the baseline the difference wraps
// high and the decision can report a touch for one cycle, visibly on the
// very first evaluation after power-up, while the reference is still
// Uncalibrated. The snap in the same call drops the reference to the
// sample level, so the condition never outlives the cycle. Kept as-is
// from the original numeric design; callers that must not see the
// power-up blip suppress the first cycle (see Array).
func (c Calibrator) Evaluate(sample uint8, ref *Reference) bool {
	baseline := uint8(*ref >> c.Offset)
	touched := sample-baseline > c.Threshold

	if sample <= baseline {
		// Snap: the environment level is at or below the tracked
		// baseline, follow it down immediately.
		*ref = Reference(sample) << c.Offset
	} else {
		// Cool down: creep upward one unit per cycle.
		*ref++
	}
	return touched
}

// Baseline returns the 8-bit baseline the given reference maps to.
func (c Calibrator) Baseline(ref Reference) uint8 {
	return uint8(ref >> c.Offset)
}
