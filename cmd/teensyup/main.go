// teensyup flashes a compiled PlatformIO firmware image onto a Teensy
// board: it resolves the build target, asks the running firmware to reboot
// into the hardware bootloader over serial, waits for the bootloader to come
// up, then drives teensy_loader_cli with a bounded retry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/buckleypaul/teensyup/internal/config"
	"github.com/buckleypaul/teensyup/internal/flash"
	"github.com/buckleypaul/teensyup/internal/picker"
	"github.com/buckleypaul/teensyup/internal/pio"
	"github.com/buckleypaul/teensyup/internal/serialport"
	"github.com/buckleypaul/teensyup/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	envFlag := flag.String("env", "", "PlatformIO environment name (e.g., teensy40)")
	mmcuFlag := flag.String("mmcu", "", "Override -mmcu flag (e.g., TEENSY40)")
	boardFlag := flag.String("board", "", "Override PlatformIO board id (e.g., teensy40)")
	hexFlag := flag.String("hex", "", "Path to firmware hex (overrides autodetect)")
	portFlag := flag.String("port", "", "Serial port (overrides autodetect)")
	pioDirFlag := flag.String("pio-dir", "", "PlatformIO build output dir (default .pio/build)")
	verbose := flag.Bool("verbose", false, "Enable verbose loader output (-v)")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		ui.Errorf("%v", err)
		return 1
	}

	cfg := config.Load(cwd)
	if *pioDirFlag != "" {
		cfg.PioDir = *pioDirFlag
	}
	if *portFlag != "" {
		cfg.SerialPort = *portFlag
	}

	resolver := &pio.Resolver{
		PioDir:  cfg.PioDir,
		IniPath: "platformio.ini",
		Table:   pio.DefaultMMCUTable(),
		Select:  pickBuild,
	}

	target, err := resolver.Resolve(pio.Overrides{
		Env:   *envFlag,
		Board: *boardFlag,
		MMCU:  *mmcuFlag,
		Hex:   *hexFlag,
	})
	if err != nil {
		ui.Errorf("%v", err)
		return 1
	}

	if err := target.CheckArtifact(); err != nil {
		ui.Errorf("%v", err)
		return 1
	}
	if info, err := pio.InspectHex(target.HexPath); err != nil {
		ui.Uploadf("Warning: %s is not a readable Intel HEX image: %v", target.HexPath, err)
	} else {
		ui.Uploadf("Firmware %s: %d bytes in %d segments", target.HexPath, info.Bytes, info.Segments)
	}

	loader, err := pio.LocateLoader(cfg.LoaderPath)
	if err != nil {
		ui.Errorf("%v", err)
		ui.Hintf("Make sure the Teensy platform is installed in PlatformIO")
		return 1
	}

	port := cfg.SerialPort
	if port == "" {
		port, err = serialport.Locator{}.Find()
		if err != nil {
			reportNoPorts()
			return 1
		}
	}
	ui.Resetf("Using serial port: %s", port)

	handshaker := serialport.NewHandshaker(cfg.SerialBaudRate)
	handshaker.Logf = ui.Resetf
	outcome := handshaker.Run(port)
	if outcome.Acknowledged {
		ui.Resetf("Reboot command confirmed")
	} else {
		ui.Resetf("No response from Teensy (proceeding anyway)")
	}

	waitForBootloader(cfg.BootloaderWait())

	ui.Uploadf("Uploading %s via teensy_loader_cli...", target.HexPath)
	uploader := flash.NewUploader(loader, target.MMCU, target.HexPath, *verbose)
	uploader.Timeout = cfg.UploadTimeout()
	uploader.Logf = ui.Uploadf

	attempts, err := uploader.Run(context.Background())
	if err != nil {
		reportUploadFailure(attempts)
		return 1
	}

	last := attempts[len(attempts)-1]
	if out := strings.TrimSpace(last.Stdout); out != "" {
		ui.Uploadf("Output: %s", out)
	}
	fmt.Println(ui.SuccessStyle.Render("Firmware uploaded successfully!"))
	return 0
}

// pickBuild wraps the interactive prompt with a transcript of the choices,
// so the selection is visible in the run log after the prompt closes.
func pickBuild(builds []pio.Build) (pio.Build, error) {
	ui.Selectf("Multiple build outputs found:")
	for i, b := range builds {
		ui.Selectf("  %d. %s -> %s", i+1, b.Env, b.HexPath)
	}
	picked, err := picker.Pick(builds)
	if err != nil {
		return pio.Build{}, err
	}
	ui.Selectf("Selected %s", picked.Env)
	return picked, nil
}

func reportNoPorts() {
	ui.Errorf("No Teensy serial port found!")
	ui.Resetf("Available ports:")
	for _, p := range (serialport.Locator{}).AllPorts() {
		ui.Resetf("  %s", p)
	}
	for _, p := range serialport.DetailedPorts() {
		ui.Resetf("  %s", p)
	}
	ui.Hintf("Make sure the Teensy is connected and running your code")
}

// waitForBootloader blocks while the bootloader re-enumerates. The wait is
// unconditional: the handshake outcome says nothing about when the
// bootloader is actually ready to accept a connection.
func waitForBootloader(wait time.Duration) {
	ui.Resetf("Waiting %s for bootloader to initialize (may need to unplug and replug USB)", wait)
	const step = 100 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < wait; elapsed += step {
		time.Sleep(step)
		fmt.Print(".")
	}
	fmt.Println()
	ui.Resetf("Bootloader should now be ready for programming...")
}

func reportUploadFailure(attempts []flash.Attempt) {
	ui.Uploadf("Both attempts failed!")
	for _, a := range attempts {
		if out := strings.TrimSpace(a.Stdout); out != "" {
			ui.Uploadf("Attempt %d output: %s", a.Number, out)
		}
		if errOut := strings.TrimSpace(a.Stderr); errOut != "" {
			ui.Uploadf("Attempt %d error: %s", a.Number, errOut)
		}
	}
	ui.Hintf("Try: close serial monitors, increase bootloader_wait_ms, use --verbose")
	ui.Hintf("If stuck, press the button on the Teensy to force bootloader mode")
}
