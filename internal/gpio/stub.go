//go:build !linux

package gpio

import "fmt"

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader fails on non-Linux platforms; use FakeReader in tests.
func NewRealReader(line Line) (*RealReader, error) {
	return nil, fmt.Errorf("gpio: %s line %d requires the Linux character device", line.Chip, line.Pin)
}

func (r *RealReader) Read() (bool, error) {
	return false, fmt.Errorf("gpio: not supported")
}

func (r *RealReader) Close() error {
	return nil
}
