//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: hardware access requires Linux")

// MemPin is not available on non-Linux platforms.
type MemPin struct{}

// OpenMem returns an error on non-Linux platforms.
func OpenMem() error { return errUnsupported }

// CloseMem is a no-op on non-Linux platforms.
func CloseMem() error { return nil }

// NewMemPin returns an error on non-Linux platforms.
func NewMemPin(bcm int) (*MemPin, error) { return nil, errUnsupported }

func (*MemPin) DriveLow()       {}
func (*MemPin) DriveHigh()      {}
func (*MemPin) SetInput()       {}
func (*MemPin) SetOutput()      {}
func (*MemPin) ReadLevel() bool { return false }
func (*MemPin) Close() error    { return nil }

// CdevPin is not available on non-Linux platforms.
type CdevPin struct{}

// NewCdevPin returns an error on non-Linux platforms.
func NewCdevPin(chip string, offset int) (*CdevPin, error) { return nil, errUnsupported }

func (*CdevPin) DriveLow()       {}
func (*CdevPin) DriveHigh()      {}
func (*CdevPin) SetInput()       {}
func (*CdevPin) SetOutput()      {}
func (*CdevPin) ReadLevel() bool { return false }
func (*CdevPin) Err() error      { return errUnsupported }
func (*CdevPin) Close() error    { return nil }
