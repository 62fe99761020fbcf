package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultBaudRate = 115200
	DefaultPioDir   = ".pio/build"

	defaultBootloaderWait = 5 * time.Second
	defaultUploadTimeout  = 60 * time.Second
)

// Config holds all teensyup configuration.
type Config struct {
	PioDir           string `json:"pio_dir,omitempty"`
	SerialPort       string `json:"serial_port,omitempty"`
	SerialBaudRate   int    `json:"serial_baud_rate,omitempty"`
	LoaderPath       string `json:"loader_path,omitempty"`
	BootloaderWaitMs int    `json:"bootloader_wait_ms,omitempty"`
	UploadTimeoutS   int    `json:"upload_timeout_s,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		PioDir:         DefaultPioDir,
		SerialBaudRate: DefaultBaudRate,
	}
}

// Load reads and merges global and project configs.
// Order: defaults → global (~/.config/teensyup/config.json) →
// project (<projectRoot>/.teensyup/config.json).
func Load(projectRoot string) Config {
	cfg := Defaults()

	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".config", "teensyup", "config.json")
		mergeFromFile(&cfg, globalPath)
	}

	if projectRoot != "" {
		projPath := filepath.Join(projectRoot, ".teensyup", "config.json")
		mergeFromFile(&cfg, projPath)
	}

	return cfg
}

// BootloaderWait returns how long to wait for the bootloader to come up
// after the reboot handshake. The delay covers real hardware re-enumeration
// time and must stay generous.
func (c Config) BootloaderWait() time.Duration {
	if c.BootloaderWaitMs > 0 {
		return time.Duration(c.BootloaderWaitMs) * time.Millisecond
	}
	return defaultBootloaderWait
}

// UploadTimeout returns the execution bound for one loader invocation.
func (c Config) UploadTimeout() time.Duration {
	if c.UploadTimeoutS > 0 {
		return time.Duration(c.UploadTimeoutS) * time.Second
	}
	return defaultUploadTimeout
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return
	}

	if fileCfg.PioDir != "" {
		cfg.PioDir = fileCfg.PioDir
	}
	if fileCfg.SerialPort != "" {
		cfg.SerialPort = fileCfg.SerialPort
	}
	if fileCfg.SerialBaudRate != 0 {
		cfg.SerialBaudRate = fileCfg.SerialBaudRate
	}
	if fileCfg.LoaderPath != "" {
		cfg.LoaderPath = fileCfg.LoaderPath
	}
	if fileCfg.BootloaderWaitMs != 0 {
		cfg.BootloaderWaitMs = fileCfg.BootloaderWaitMs
	}
	if fileCfg.UploadTimeoutS != 0 {
		cfg.UploadTimeoutS = fileCfg.UploadTimeoutS
	}
}
