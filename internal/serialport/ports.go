package serialport

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.bug.st/serial/enumerator"
)

// ErrNoPorts means no serial device matched the Teensy port patterns.
var ErrNoPorts = errors.New("no Teensy serial port found")

// boardPatterns match the device nodes a running Teensy shows up as.
// COM* covers hosts that expose communication-port style names.
var boardPatterns = []string{
	"/dev/cu.usbmodem*",
	"/dev/ttyACM*",
	"COM*",
}

// broadPatterns match any serial-ish device node, for diagnostics only.
var broadPatterns = []string{
	"/dev/cu.*",
	"/dev/tty.*",
	"COM*",
}

// Locator finds the serial port a Teensy is attached to.
// Glob is injectable for tests; nil means filepath.Glob.
type Locator struct {
	Glob func(string) ([]string, error)
}

// Find returns the first port matching the board patterns, in pattern order.
// No liveness check is performed; the first candidate wins.
func (l Locator) Find() (string, error) {
	ports := l.expand(boardPatterns)
	if len(ports) == 0 {
		return "", ErrNoPorts
	}
	return ports[0], nil
}

// AllPorts lists every port matching the broad patterns, as a diagnostic
// aid when Find comes up empty.
func (l Locator) AllPorts() []string {
	return l.expand(broadPatterns)
}

func (l Locator) expand(patterns []string) []string {
	glob := l.Glob
	if glob == nil {
		glob = filepath.Glob
	}
	var out []string
	for _, p := range patterns {
		matches, err := glob(p)
		if err != nil {
			continue
		}
		out = append(out, matches...)
	}
	return out
}

// DetailedPorts returns one descriptive line per enumerated serial port,
// including USB VID/PID where known.
func DetailedPorts() []string {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range ports {
		if p.IsUSB {
			out = append(out, fmt.Sprintf("%s (USB %s:%s)", p.Name, p.VID, p.PID))
		} else {
			out = append(out, p.Name)
		}
	}
	return out
}
