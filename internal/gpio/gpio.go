// Package gpio provides motion sensor input with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the motion sensor output.
type Reader interface {
	// Read returns true while the sensor reports motion. Active-low wiring
	// is already accounted for.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Line describes where the sensor is wired.
type Line struct {
	Chip      string // e.g. "gpiochip0"
	Pin       int    // BCM numbering
	ActiveLow bool   // sensor pulls the line low on motion
}

// DefaultLine is a PIR sensor on BCM 17 of the first chip.
var DefaultLine = Line{Chip: "gpiochip0", Pin: 17}
