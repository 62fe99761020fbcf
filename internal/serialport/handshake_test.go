package serialport

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.bug.st/serial"
)

// fakePort implements serial.Port with queued read chunks. Reads past the
// queue return (0, nil), matching the library's read-timeout behavior.
type fakePort struct {
	reads      [][]byte
	written    strings.Builder
	writeErr   error
	closed     bool
	inputReset bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.reads) == 0 {
		return 0, nil
	}
	chunk := p.reads[0]
	p.reads = p.reads[1:]
	return copy(b, chunk), nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written.Write(b)
	return len(b), nil
}

func (p *fakePort) Close() error                 { p.closed = true; return nil }
func (p *fakePort) ResetInputBuffer() error      { p.inputReset = true; return nil }
func (p *fakePort) ResetOutputBuffer() error     { return nil }
func (p *fakePort) Drain() error                 { return nil }
func (p *fakePort) SetMode(*serial.Mode) error   { return nil }
func (p *fakePort) SetDTR(bool) error            { return nil }
func (p *fakePort) SetRTS(bool) error            { return nil }
func (p *fakePort) SetReadTimeout(time.Duration) error { return nil }
func (p *fakePort) Break(time.Duration) error    { return nil }
func (p *fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{}, nil
}

func testHandshaker(port *fakePort, openErr error) *Handshaker {
	h := NewHandshaker(115200)
	h.SettleDelay = 0
	h.AckWindow = 100 * time.Millisecond
	h.PollInterval = time.Millisecond
	h.OpenPort = func(string, *serial.Mode) (serial.Port, error) {
		if openErr != nil {
			return nil, openErr
		}
		return port, nil
	}
	return h
}

func TestHandshakeAcknowledged(t *testing.T) {
	port := &fakePort{reads: [][]byte{
		[]byte("[REBOOT] device entering bootloader...\n"),
	}}
	h := testHandshaker(port, nil)

	out := h.Run("/dev/ttyACM0")
	if !out.Acknowledged {
		t.Error("expected acknowledgement")
	}
	if len(out.Responses) != 1 {
		t.Errorf("expected 1 response, got %v", out.Responses)
	}
	if got := port.written.String(); got != RebootDirective {
		t.Errorf("expected directive %q written, got %q", RebootDirective, got)
	}
	if !port.inputReset {
		t.Error("expected input buffer reset before sending")
	}
	if !port.closed {
		t.Error("expected port closed")
	}
}

func TestHandshakeAckAcrossChunks(t *testing.T) {
	port := &fakePort{reads: [][]byte{
		[]byte("hello there\nEntering boot"),
		[]byte("loader now\n"),
	}}
	h := testHandshaker(port, nil)

	out := h.Run("/dev/ttyACM0")
	if !out.Acknowledged {
		t.Error("expected acknowledgement from split line")
	}
	if len(out.Responses) != 2 {
		t.Errorf("expected 2 responses, got %v", out.Responses)
	}
	if out.Responses[0] != "hello there" {
		t.Errorf("unexpected first response %q", out.Responses[0])
	}
}

func TestHandshakeNoResponse(t *testing.T) {
	port := &fakePort{}
	h := testHandshaker(port, nil)

	out := h.Run("/dev/ttyACM0")
	if out.Acknowledged {
		t.Error("expected no acknowledgement")
	}
	if len(out.Responses) != 0 {
		t.Errorf("expected no responses, got %v", out.Responses)
	}
	if !port.closed {
		t.Error("expected port closed even without a response")
	}
}

func TestHandshakeUnrelatedLinesNotAck(t *testing.T) {
	port := &fakePort{reads: [][]byte{
		[]byte("sensor reading: 42\n\nok\n"),
	}}
	h := testHandshaker(port, nil)

	out := h.Run("/dev/ttyACM0")
	if out.Acknowledged {
		t.Error("unrelated lines must not acknowledge")
	}
	// The blank line is dropped, the rest are recorded.
	if len(out.Responses) != 2 {
		t.Errorf("expected 2 responses, got %v", out.Responses)
	}
}

func TestHandshakeOpenFailure(t *testing.T) {
	h := testHandshaker(nil, errors.New("device busy"))

	out := h.Run("/dev/ttyACM0")
	if out.Acknowledged {
		t.Error("expected no acknowledgement when open fails")
	}
}

func TestHandshakeWriteFailureClosesPort(t *testing.T) {
	port := &fakePort{writeErr: errors.New("io error")}
	h := testHandshaker(port, nil)

	out := h.Run("/dev/ttyACM0")
	if out.Acknowledged {
		t.Error("expected no acknowledgement when write fails")
	}
	if !port.closed {
		t.Error("expected port closed after write failure")
	}
}

func TestHandshakeDropsInvalidUTF8(t *testing.T) {
	port := &fakePort{reads: [][]byte{
		{0xff, 0xfe, 'R', 'E', 'B', 'O', 'O', 'T', '\n'},
	}}
	h := testHandshaker(port, nil)

	out := h.Run("/dev/ttyACM0")
	if !out.Acknowledged {
		t.Error("expected acknowledgement despite invalid bytes")
	}
	if out.Responses[0] != "REBOOT" {
		t.Errorf("expected invalid bytes stripped, got %q", out.Responses[0])
	}
}
