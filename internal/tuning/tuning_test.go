package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := Default()
	cfg.PlayerWeight = 0.9
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestValidateRejectsUnorderedThresholds(t *testing.T) {
	cfg := Default()
	cfg.TierThresholds = [3]float64{80, 75, 90}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-increasing thresholds")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "seed: 42\nwind_down_sec: 12\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 || cfg.WindDownSec != 12 {
		t.Fatalf("overrides not applied: seed=%d wind_down=%f", cfg.Seed, cfg.WindDownSec)
	}
	// Untouched fields keep their defaults.
	def := Default()
	if cfg.PlayerWeight != def.PlayerWeight || cfg.TierThresholds != def.TierThresholds {
		t.Fatalf("defaults lost during load: %+v", cfg)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("player_weight: 0.9\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error from loaded file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
