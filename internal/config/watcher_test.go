package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "engine:\n  skill_level: 5\n")

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) { changed <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if got := w.Config().Engine.SkillLevel; got != 5 {
		t.Fatalf("initial skill_level = %d, want 5", got)
	}

	writeConfig(t, path, "engine:\n  skill_level: 12\n")

	select {
	case cfg := <-changed:
		if cfg.Engine.SkillLevel != 12 {
			t.Errorf("reloaded skill_level = %d, want 12", cfg.Engine.SkillLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if got := w.Config().Engine.SkillLevel; got != 12 {
		t.Errorf("Config() skill_level = %d, want 12", got)
	}
}

func TestWatcherKeepsConfigWhenReloadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "engine:\n  threads: 4\n")

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) { changed <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	// A rejected reload must not fire onChange or replace the config.
	writeConfig(t, path, "engine:\n  threads: 0\n")

	select {
	case cfg := <-changed:
		t.Fatalf("onChange fired for invalid config: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}

	if got := w.Config().Engine.Threads; got != 4 {
		t.Errorf("Config() threads = %d, want previous 4", got)
	}
}

func TestWatcherMissingFile(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("expected error for missing config file")
	}
}
