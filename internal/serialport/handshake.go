package serialport

import (
	"bytes"
	"strings"
	"time"

	"go.bug.st/serial"
)

// RebootDirective is the application-level command the firmware listens for.
const RebootDirective = "REBOOT_BOOTLOADER\n"

// ackMarkers identify an acknowledgement line (case sensitive).
var ackMarkers = []string{"Entering bootloader", "REBOOT"}

// Outcome reports what happened during the reboot handshake. It never
// carries an error: handshake failure must not abort the run, so callers
// only get a value to log.
type Outcome struct {
	Acknowledged bool
	Responses    []string // every non-empty line received, in order
}

// Handshaker asks running firmware to reboot into the hardware bootloader.
// The durations encode real hardware settle windows; shorten them only in
// tests.
type Handshaker struct {
	BaudRate     int
	ReadTimeout  time.Duration // per-read bound on the open port
	SettleDelay  time.Duration // pause after open before touching the port
	AckWindow    time.Duration // how long to wait for an acknowledgement
	PollInterval time.Duration // pause between reads when no data is pending

	// OpenPort is injectable for tests; defaults to serial.Open.
	OpenPort func(name string, mode *serial.Mode) (serial.Port, error)

	// Logf receives operator-facing progress lines. Never nil after
	// NewHandshaker.
	Logf func(format string, args ...any)
}

// NewHandshaker returns a Handshaker with production timing.
func NewHandshaker(baudRate int) *Handshaker {
	return &Handshaker{
		BaudRate:     baudRate,
		ReadTimeout:  2 * time.Second,
		SettleDelay:  500 * time.Millisecond,
		AckWindow:    3 * time.Second,
		PollInterval: 100 * time.Millisecond,
		OpenPort:     serial.Open,
		Logf:         func(string, ...any) {},
	}
}

// Run performs the handshake once. The port is released on every path; the
// returned Outcome says whether the firmware acknowledged the reboot.
func (h *Handshaker) Run(portName string) Outcome {
	var out Outcome

	mode := &serial.Mode{
		BaudRate: h.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	h.Logf("Connecting to Teensy on %s...", portName)
	port, err := h.OpenPort(portName, mode)
	if err != nil {
		h.Logf("Failed to open %s: %v", portName, err)
		h.Logf("Proceeding with upload anyway...")
		return out
	}
	defer port.Close()

	port.SetReadTimeout(h.ReadTimeout)

	// Let the host serial driver settle, then drop anything the firmware
	// printed before we were listening.
	time.Sleep(h.SettleDelay)
	port.ResetInputBuffer()

	h.Logf("Sending %s command...", strings.TrimSpace(RebootDirective))
	if _, err := port.Write([]byte(RebootDirective)); err != nil {
		h.Logf("Failed to send reboot command: %v", err)
		h.Logf("Proceeding with upload anyway...")
		return out
	}
	port.Drain()

	deadline := time.Now().Add(h.AckWindow)
	buf := make([]byte, 256)
	var pending []byte

	for time.Now().Before(deadline) {
		n, err := port.Read(buf)
		if err != nil {
			h.Logf("Read failed: %v", err)
			break
		}
		if n == 0 {
			time.Sleep(h.PollInterval)
			continue
		}

		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := decodeLine(pending[:i])
			pending = pending[i+1:]
			if line == "" {
				continue
			}
			out.Responses = append(out.Responses, line)
			h.Logf("Teensy: %s", line)
			if isAck(line) {
				out.Acknowledged = true
				return out
			}
		}
	}

	return out
}

// decodeLine trims a received line and drops malformed UTF-8 rather than
// failing on it.
func decodeLine(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}

func isAck(line string) bool {
	for _, m := range ackMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
