package pio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocateLoaderPrefersOverride(t *testing.T) {
	tmp := t.TempDir()
	override := touch(t, filepath.Join(tmp, "my_loader"))
	packaged := touch(t, filepath.Join(tmp, "packaged_loader"))

	got, err := locateLoader(override, packaged, func(string) (string, error) {
		t.Fatal("PATH lookup should not run")
		return "", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != override {
		t.Errorf("expected override %s, got %s", override, got)
	}
}

func TestLocateLoaderMissingOverrideFails(t *testing.T) {
	_, err := locateLoader("/nonexistent/loader", "", nil)
	if !errors.Is(err, ErrMissingLoader) {
		t.Fatalf("expected ErrMissingLoader, got %v", err)
	}
}

func TestLocateLoaderPrefersPackagedOverPath(t *testing.T) {
	tmp := t.TempDir()
	packaged := touch(t, filepath.Join(tmp, "teensy_loader_cli"))

	got, err := locateLoader("", packaged, func(string) (string, error) {
		return "/usr/bin/teensy_loader_cli", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != packaged {
		t.Errorf("expected packaged %s, got %s", packaged, got)
	}
}

func TestLocateLoaderFallsBackToPath(t *testing.T) {
	got, err := locateLoader("", filepath.Join(t.TempDir(), "missing"), func(name string) (string, error) {
		if name != "teensy_loader_cli" {
			t.Errorf("unexpected lookup name %s", name)
		}
		return "/usr/local/bin/teensy_loader_cli", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "/usr/local/bin/teensy_loader_cli" {
		t.Errorf("unexpected path %s", got)
	}
}

func TestLocateLoaderNotFound(t *testing.T) {
	_, err := locateLoader("", filepath.Join(t.TempDir(), "missing"), func(string) (string, error) {
		return "", errors.New("not found")
	})
	if !errors.Is(err, ErrMissingLoader) {
		t.Fatalf("expected ErrMissingLoader, got %v", err)
	}
}
