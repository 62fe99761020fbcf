package pio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNoEnvironment means no build environment could be resolved from
	// overrides, discovered build outputs, or platformio.ini.
	ErrNoEnvironment = errors.New("unable to resolve a build environment")

	// ErrMissingArtifact means the resolved firmware image does not exist.
	ErrMissingArtifact = errors.New("firmware image not found")

	// ErrUnknownBoard means no -mmcu flag could be derived for the target.
	ErrUnknownBoard = errors.New("unable to determine -mmcu flag")
)

// Overrides carries the operator's explicit CLI choices. Empty fields defer
// to discovery and the platformio.ini descriptor.
type Overrides struct {
	Env   string
	Board string
	MMCU  string
	Hex   string
}

// Target is the fully resolved flashing target. It is immutable once
// Resolve returns it.
type Target struct {
	Env     string
	HexPath string
	Board   string
	MMCU    string
}

// Resolver merges overrides, build-output discovery, and the platformio.ini
// descriptor into one Target.
type Resolver struct {
	PioDir  string
	IniPath string
	Table   MMCUTable

	// Select disambiguates when discovery finds several build outputs.
	// It must return exactly one of the given builds or an error.
	Select func([]Build) (Build, error)

	// Glob is injectable for tests; nil means filepath.Glob.
	Glob func(string) ([]string, error)
}

// Resolve produces the flashing target. Priority: explicit env → sole
// discovered build (or interactive selection) → first platformio.ini entry.
func (r *Resolver) Resolve(o Overrides) (Target, error) {
	envs, err := LoadEnvironments(r.IniPath)
	if err != nil {
		return Target{}, err
	}

	env := o.Env
	hexPath := ""

	if env == "" {
		builds, err := FindBuilds(r.PioDir, r.Glob)
		if err != nil {
			return Target{}, err
		}
		switch {
		case len(builds) == 1:
			env, hexPath = builds[0].Env, builds[0].HexPath
		case len(builds) > 1:
			picked, err := r.Select(builds)
			if err != nil {
				return Target{}, fmt.Errorf("build selection: %w", err)
			}
			env, hexPath = picked.Env, picked.HexPath
		}
	} else {
		hexPath = filepath.Join(r.PioDir, env, FirmwareFile)
	}

	if env == "" {
		if len(envs) == 0 {
			return Target{}, ErrNoEnvironment
		}
		env = envs[0].Name
		hexPath = filepath.Join(r.PioDir, env, FirmwareFile)
	}

	if o.Hex != "" {
		hexPath = o.Hex
	}

	board := o.Board
	if board == "" {
		board = boardFor(envs, env)
	}

	mmcu := o.MMCU
	if mmcu == "" {
		mmcu = r.Table[board]
	}
	if mmcu == "" {
		// Last resort: some projects name the environment after the board.
		mmcu = r.Table[env]
	}
	if mmcu == "" {
		return Target{}, fmt.Errorf("%w (env=%s, board=%s); use --mmcu", ErrUnknownBoard, env, board)
	}

	return Target{Env: env, HexPath: hexPath, Board: board, MMCU: mmcu}, nil
}

// CheckArtifact verifies the resolved image exists as a regular file.
func (t Target) CheckArtifact() error {
	if t.HexPath == "" {
		return fmt.Errorf("%w: no image path resolved", ErrMissingArtifact)
	}
	info, err := os.Stat(t.HexPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, t.HexPath)
	}
	return nil
}
