package pio

// MMCUTable maps a PlatformIO board id to the -mmcu flag understood by
// teensy_loader_cli. The set of supported boards is closed.
type MMCUTable map[string]string

// DefaultMMCUTable returns the supported Teensy boards.
func DefaultMMCUTable() MMCUTable {
	return MMCUTable{
		"teensy40": "TEENSY40",
		"teensy41": "TEENSY41",
		"teensy36": "TEENSY36",
		"teensy35": "TEENSY35",
		"teensy31": "TEENSY31",
		"teensy30": "TEENSY30",
	}
}
