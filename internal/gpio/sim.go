package gpio

// SimPin is a test double that simulates the RC charge behaviour of a
// sensor channel. While configured as an input it reads low until the
// scripted number of reads has elapsed, then high: a capacitor charging
// through the external resistor, where a touch shows up as a changed
// charge time.
type SimPin struct {
	// Charge holds the scripted charge times, one per measurement, as the
	// ordinal of the first read that returns high after SetInput. A value
	// of 0 never charges (open circuit / disconnected sensor). When the
	// script is exhausted the last value repeats.
	Charge []int

	// Ops records the configuration operations in order ("drive-low",
	// "drive-high", "set-input", "set-output") for sequence assertions.
	// Reads are not recorded.
	Ops []string

	index  int
	output bool
	level  bool // latched output level
	reads  int  // reads since the current SetInput
	target int  // charge time for the current measurement
}

// NewSimPin creates a SimPin with the given charge script.
func NewSimPin(charge ...int) *SimPin {
	return &SimPin{Charge: charge, output: true}
}

// DriveLow latches the output level low.
func (s *SimPin) DriveLow() {
	s.level = false
	s.Ops = append(s.Ops, "drive-low")
}

// DriveHigh latches the output level high.
func (s *SimPin) DriveHigh() {
	s.level = true
	s.Ops = append(s.Ops, "drive-high")
}

// SetInput floats the pin and starts the next scripted measurement.
func (s *SimPin) SetInput() {
	s.output = false
	s.reads = 0
	s.target = s.nextCharge()
	s.Ops = append(s.Ops, "set-input")
}

// SetOutput drives the pin at the latched level.
func (s *SimPin) SetOutput() {
	s.output = true
	s.Ops = append(s.Ops, "set-output")
}

// ReadLevel returns the driven level while the pin is an output. As an
// input it reads low until the scripted charge time elapses.
func (s *SimPin) ReadLevel() bool {
	if s.output {
		return s.level
	}
	s.reads++
	return s.target > 0 && s.reads >= s.target
}

// IsOutput reports whether the pin is currently configured as an output.
func (s *SimPin) IsOutput() bool { return s.output }

// Level returns the latched output level.
func (s *SimPin) Level() bool { return s.level }

// Reset rewinds the charge script and clears the recorded operations.
func (s *SimPin) Reset() {
	s.index = 0
	s.Ops = nil
	s.output = true
	s.level = false
	s.reads = 0
	s.target = 0
}

// nextCharge consumes the next script value. If the script is exhausted
// the last value repeats; an empty script never charges.
func (s *SimPin) nextCharge() int {
	if len(s.Charge) == 0 {
		return 0
	}
	v := s.Charge[s.index]
	if s.index < len(s.Charge)-1 {
		s.index++
	}
	return v
}
