// Package flash drives teensy_loader_cli with a bounded retry policy.
package flash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrUploadFailed is the terminal error after all attempts are exhausted.
var ErrUploadFailed = errors.New("upload failed")

// maxAttempts bounds the retry loop. The first bootloader connection often
// races device re-enumeration, so one retry recovers most transient
// failures; more never helps.
const maxAttempts = 2

// Attempt records one invocation of the loader.
type Attempt struct {
	Number   int
	ExitCode int // -1 when the process never ran or was killed
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error // execution-level error, nil for a plain non-zero exit
}

// Succeeded reports whether this attempt ended with exit code zero.
func (a Attempt) Succeeded() bool {
	return !a.TimedOut && a.Err == nil && a.ExitCode == 0
}

// Uploader invokes the external loader for one resolved target.
type Uploader struct {
	Loader  string
	MMCU    string
	HexPath string
	Verbose bool

	Timeout  time.Duration // bound on a single invocation
	Cooldown time.Duration // pause between attempts

	// Logf receives operator-facing progress lines. Never nil after
	// NewUploader.
	Logf func(format string, args ...any)
}

// NewUploader returns an Uploader with production timing.
func NewUploader(loader, mmcu, hexPath string, verbose bool) *Uploader {
	return &Uploader{
		Loader:   loader,
		MMCU:     mmcu,
		HexPath:  hexPath,
		Verbose:  verbose,
		Timeout:  60 * time.Second,
		Cooldown: 2 * time.Second,
		Logf:     func(string, ...any) {},
	}
}

// Args returns the loader argv, excluding the executable itself.
func (u *Uploader) Args() []string {
	args := []string{fmt.Sprintf("-mmcu=%s", u.MMCU), "-w"}
	if u.Verbose {
		args = append(args, "-v")
	}
	return append(args, u.HexPath)
}

// Run performs at most two attempts, stopping at the first success. The
// returned slice holds every attempt made; err is non-nil only when all
// attempts failed.
func (u *Uploader) Run(ctx context.Context) ([]Attempt, error) {
	var attempts []Attempt

	for n := 1; n <= maxAttempts; n++ {
		u.Logf("Attempt %d: %s %s", n, u.Loader, strings.Join(u.Args(), " "))
		a := u.attempt(ctx, n)
		attempts = append(attempts, a)

		if a.Succeeded() {
			return attempts, nil
		}

		switch {
		case a.TimedOut:
			u.Logf("Attempt %d timed out after %s", n, u.Timeout)
		case a.Err != nil:
			u.Logf("Attempt %d failed: %v", n, a.Err)
		default:
			u.Logf("Attempt %d failed (exit code %d)", n, a.ExitCode)
		}

		if n < maxAttempts {
			u.Logf("This can be normal - retrying in %s...", u.Cooldown)
			time.Sleep(u.Cooldown)
		}
	}

	return attempts, fmt.Errorf("%w after %d attempts", ErrUploadFailed, maxAttempts)
}

func (u *Uploader) attempt(ctx context.Context, n int) Attempt {
	runCtx, cancel := context.WithTimeout(ctx, u.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, u.Loader, u.Args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	a := Attempt{
		Number: n,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		a.TimedOut = true
		a.ExitCode = -1
		a.Err = runCtx.Err()
		return a
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			a.ExitCode = exitErr.ExitCode()
		} else {
			a.ExitCode = -1
			a.Err = err
		}
	}
	return a
}
