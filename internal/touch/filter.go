package touch

// Both filters take one extra leading sample and discard it. If the pin
// was just driving an LED, the residual charge biases the first
// measurement afterwards; dropping it stabilises the result.

// Average measures the channel n times and returns the truncated mean.
// The sum is widened to 16 bits, which holds 255 samples of 255 without
// overflow. n of 0 is guarded and treated as 1 (sum/0 has no meaning).
func (s *Sampler) Average(n uint8) uint8 {
	if n == 0 {
		n = 1
	}

	s.MeasureOnce() // throwaway

	var sum uint16
	for i := uint8(0); i < n; i++ {
		sum += uint16(s.MeasureOnce())
	}
	return uint8(sum / uint16(n))
}

// Median3 measures the channel three times and returns the middle value.
// For this few samples the median beats the average: a single outlier is
// rejected completely instead of being smeared across the result.
func (s *Sampler) Median3() uint8 {
	s.MeasureOnce() // throwaway

	v0 := s.MeasureOnce()
	v1 := s.MeasureOnce()
	v2 := s.MeasureOnce()
	return median3(v0, v1, v2)
}

// median3 picks the middle of three values without sorting. Equal values
// fall through to v0, which is the repeated value whenever there is a tie.
func median3(v0, v1, v2 uint8) uint8 {
	if v0 < v1 {
		if v1 < v2 {
			return v1
		}
		if v0 < v2 {
			return v2
		}
		return v0
	}
	if v2 < v1 {
		return v1
	}
	if v2 < v0 {
		return v2
	}
	return v0
}
