package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimPinChargesAtScriptedRead(t *testing.T) {
	s := NewSimPin(3)
	s.SetInput()

	assert.False(t, s.ReadLevel(), "read 1 should be low")
	assert.False(t, s.ReadLevel(), "read 2 should be low")
	assert.True(t, s.ReadLevel(), "read 3 should be high")
	assert.True(t, s.ReadLevel(), "stays high once charged")
}

func TestSimPinNeverCharges(t *testing.T) {
	s := NewSimPin(0)
	s.SetInput()

	for i := 0; i < 300; i++ {
		assert.False(t, s.ReadLevel())
	}
}

func TestSimPinScriptAdvancesPerMeasurement(t *testing.T) {
	s := NewSimPin(2, 5, 1)

	s.SetInput()
	assert.False(t, s.ReadLevel())
	assert.True(t, s.ReadLevel(), "first measurement charges at read 2")

	s.SetInput()
	for i := 0; i < 4; i++ {
		assert.False(t, s.ReadLevel(), "second measurement read %d", i+1)
	}
	assert.True(t, s.ReadLevel(), "second measurement charges at read 5")

	s.SetInput()
	assert.True(t, s.ReadLevel(), "third measurement charges at read 1")

	// Script exhausted: last value repeats.
	s.SetInput()
	assert.True(t, s.ReadLevel(), "exhausted script repeats last value")
}

func TestSimPinDischargeResetsBetweenMeasurements(t *testing.T) {
	s := NewSimPin(2, 2)

	s.SetInput()
	s.ReadLevel()
	assert.True(t, s.ReadLevel())

	// New measurement starts the count over.
	s.SetInput()
	assert.False(t, s.ReadLevel(), "first read of a fresh measurement is low")
	assert.True(t, s.ReadLevel())
}

func TestSimPinOutputLevel(t *testing.T) {
	s := NewSimPin(1)

	s.DriveHigh()
	s.SetOutput()
	assert.True(t, s.IsOutput())
	assert.True(t, s.ReadLevel(), "output reads the driven level")

	s.DriveLow()
	assert.False(t, s.ReadLevel())
	assert.False(t, s.Level())
}

func TestSimPinRecordsOps(t *testing.T) {
	s := NewSimPin(1)

	s.DriveLow()
	s.SetOutput()
	s.SetInput()
	s.SetOutput()

	assert.Equal(t, []string{"drive-low", "set-output", "set-input", "set-output"}, s.Ops)
}

func TestSimPinReset(t *testing.T) {
	s := NewSimPin(5, 1)
	s.SetInput()
	s.ReadLevel()
	s.DriveHigh()

	s.Reset()

	assert.Nil(t, s.Ops)
	assert.True(t, s.IsOutput())
	assert.False(t, s.Level())

	s.SetInput()
	for i := 0; i < 4; i++ {
		assert.False(t, s.ReadLevel())
	}
	assert.True(t, s.ReadLevel(), "script rewound to the first value")
}

func TestErrHelperNilForSimPin(t *testing.T) {
	assert.NoError(t, Err(NewSimPin(1)))
}
