package pio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const loaderName = "teensy_loader_cli"

// ErrMissingLoader means teensy_loader_cli could not be located.
var ErrMissingLoader = errors.New("teensy_loader_cli not found")

// LocateLoader finds the teensy_loader_cli executable. An explicit override
// (from config or flag) wins; otherwise the PlatformIO packaged copy is
// preferred over a PATH lookup.
func LocateLoader(override string) (string, error) {
	return locateLoader(override, packagedLoaderPath(), exec.LookPath)
}

func locateLoader(override, packaged string, lookPath func(string) (string, error)) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%w: configured path %s: %v", ErrMissingLoader, override, err)
		}
		return override, nil
	}

	if packaged != "" {
		if _, err := os.Stat(packaged); err == nil {
			return packaged, nil
		}
	}

	if path, err := lookPath(loaderName); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: install the Teensy platform in PlatformIO or put %s on PATH",
		ErrMissingLoader, loaderName)
}

// packagedLoaderPath returns the PlatformIO tool-teensy install location.
func packagedLoaderPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	name := loaderName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(home, ".platformio", "packages", "tool-teensy", name)
}
