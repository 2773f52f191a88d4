//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// CdevPin drives a pin through the Linux GPIO character device. Every
// operation is an ioctl, so the charge-count loop runs far slower than on
// MemPin and yields a coarser reading, but no register mapping is needed
// and it works on any gpiochip the kernel exposes.
//
// Kernel errors are sticky: operations record the first failure and
// Err reports it, so the measurement loop itself carries no error paths.
type CdevPin struct {
	line   *gpiocdev.Line
	shadow int // latched output level, applied on SetOutput
	output bool
	err    error
}

// NewCdevPin requests the line at offset on the named chip (e.g.
// "gpiochip0"). The line starts as a driven-low output.
func NewCdevPin(chip string, offset int) (*CdevPin, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request line %s:%d: %w", chip, offset, err)
	}
	return &CdevPin{line: l, output: true}, nil
}

// DriveLow latches the output level low.
func (c *CdevPin) DriveLow() { c.drive(0) }

// DriveHigh latches the output level high.
func (c *CdevPin) DriveHigh() { c.drive(1) }

func (c *CdevPin) drive(level int) {
	c.shadow = level
	if !c.output {
		return
	}
	if err := c.line.SetValue(level); err != nil && c.err == nil {
		c.err = fmt.Errorf("set value: %w", err)
	}
}

// SetInput floats the pin.
func (c *CdevPin) SetInput() {
	c.output = false
	if err := c.line.Reconfigure(gpiocdev.AsInput); err != nil && c.err == nil {
		c.err = fmt.Errorf("reconfigure as input: %w", err)
	}
}

// SetOutput drives the pin at the latched level.
func (c *CdevPin) SetOutput() {
	c.output = true
	if err := c.line.Reconfigure(gpiocdev.AsOutput(c.shadow)); err != nil && c.err == nil {
		c.err = fmt.Errorf("reconfigure as output: %w", err)
	}
}

// ReadLevel reports whether the pin reads high.
func (c *CdevPin) ReadLevel() bool {
	v, err := c.line.Value()
	if err != nil {
		if c.err == nil {
			c.err = fmt.Errorf("read value: %w", err)
		}
		return false
	}
	return v != 0
}

// Err returns the first error recorded by any pin operation.
func (c *CdevPin) Err() error { return c.err }

// Close reconfigures the line to a driven-low output and releases it.
func (c *CdevPin) Close() error {
	if err := c.line.Reconfigure(gpiocdev.AsOutput(0)); err != nil {
		c.line.Close()
		return fmt.Errorf("reconfigure on close: %w", err)
	}
	return c.line.Close()
}
