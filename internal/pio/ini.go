package pio

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

const envSectionPrefix = "env:"

// Environment is one `env:` section from platformio.ini.
type Environment struct {
	Name  string
	Board string
}

// LoadEnvironments parses the `env:` sections of a platformio.ini file,
// in file order. A missing file yields an empty list, matching PlatformIO's
// own tolerance for running outside a project.
func LoadEnvironments(path string) ([]Environment, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var envs []Environment
	for _, sec := range f.Sections() {
		name, ok := strings.CutPrefix(sec.Name(), envSectionPrefix)
		if !ok {
			continue
		}
		envs = append(envs, Environment{
			Name:  name,
			Board: sec.Key("board").String(),
		})
	}
	return envs, nil
}

// boardFor returns the board id declared for an environment, or "".
func boardFor(envs []Environment, name string) string {
	for _, e := range envs {
		if e.Name == name {
			return e.Board
		}
	}
	return ""
}
