package pio

import "path/filepath"

// FirmwareFile is the fixed artifact name PlatformIO writes per environment.
const FirmwareFile = "firmware.hex"

// Build is one discovered build output under the PlatformIO build dir.
type Build struct {
	Env     string // environment name, taken from the directory name
	HexPath string // path to the firmware image
}

// FindBuilds discovers build outputs matching <pioDir>/*/firmware.hex.
// Order is whatever the glob returns; it is stable within one call only.
// glob is injectable for tests; nil means filepath.Glob.
func FindBuilds(pioDir string, glob func(string) ([]string, error)) ([]Build, error) {
	if glob == nil {
		glob = filepath.Glob
	}

	matches, err := glob(filepath.Join(pioDir, "*", FirmwareFile))
	if err != nil {
		return nil, err
	}

	builds := make([]Build, 0, len(matches))
	for _, m := range matches {
		builds = append(builds, Build{
			Env:     filepath.Base(filepath.Dir(m)),
			HexPath: m,
		})
	}
	return builds, nil
}
