package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.StubSegment != DefaultStubSegment {
		t.Errorf("StubSegment = %d", cfg.StubSegment)
	}
	if cfg.GCTrigger != DefaultGCTrigger {
		t.Errorf("GCTrigger = %d", cfg.GCTrigger)
	}
	if cfg.MaxLevels != DefaultMaxLevels {
		t.Errorf("MaxLevels = %d", cfg.MaxLevels)
	}
	if cfg.DisableGC {
		t.Error("DisableGC defaults on")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GCTrigger != DefaultGCTrigger {
		t.Errorf("GCTrigger = %d", cfg.GCTrigger)
	}
}

func TestLoad_OverlayKeepsUnsetDefaults(t *testing.T) {
	dir := t.TempDir()
	data := "gc_trigger: 128\ndisable_gc: true\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GCTrigger != 128 {
		t.Errorf("GCTrigger = %d, want 128", cfg.GCTrigger)
	}
	if !cfg.DisableGC {
		t.Error("DisableGC overlay ignored")
	}
	if cfg.StubSegment != DefaultStubSegment {
		t.Errorf("unset key changed: StubSegment = %d", cfg.StubSegment)
	}
}

func TestLoad_MalformedFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("malformed config loaded without error")
	}
}
