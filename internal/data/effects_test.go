package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gunpong/server/internal/world"
)

func TestLoadEffectsMissingFile(t *testing.T) {
	got, err := LoadEffects(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadEffects missing file error = %v, want nil", err)
	}
	if got != world.DefaultEffects() {
		t.Fatal("missing file did not yield the shipped defaults")
	}
}

func TestLoadEffectsPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.yaml")
	content := "impact_count: 99\ntrail_size: 5.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadEffects(path)
	if err != nil {
		t.Fatalf("LoadEffects: %v", err)
	}
	if got.ImpactCount != 99 {
		t.Fatalf("ImpactCount = %d, want 99", got.ImpactCount)
	}
	if got.TrailSize != 5.5 {
		t.Fatalf("TrailSize = %v, want 5.5", got.TrailSize)
	}
	// Keys absent from the file keep their defaults.
	def := world.DefaultEffects()
	if got.GoalCount != def.GoalCount || got.AmbientPeriod != def.AmbientPeriod {
		t.Fatalf("untouched keys changed: %+v", got)
	}
}

func TestLoadEffectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.yaml")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEffects(path); err == nil {
		t.Fatal("LoadEffects of bad yaml = nil error, want failure")
	}
}
