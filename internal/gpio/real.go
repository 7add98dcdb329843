//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the sensor from actual hardware using the Linux GPIO
// character device.
type RealReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	pin  int
}

// NewRealReader requests the sensor line as an input.
func NewRealReader(l Line) (*RealReader, error) {
	name := l.Chip
	if name == "" {
		name = DefaultLine.Chip
	}

	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer("presence-sensor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}

	// Pull-down matches Pi boot defaults and keeps a disconnected sensor quiet.
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullDown}
	if l.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := chip.RequestLine(l.Pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", l.Pin, err)
	}

	return &RealReader{chip: chip, line: line, pin: l.Pin}, nil
}

// Read returns the logical motion level. The kernel applies active-low
// inversion, so 1 always means motion.
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read motion pin %d: %w", r.pin, err)
	}
	return v == 1, nil
}

// Close releases GPIO resources, restoring input with pull-down first so the
// pin is in its boot default state.
func (r *RealReader) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure motion pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motion pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	return errors.Join(errs...)
}
