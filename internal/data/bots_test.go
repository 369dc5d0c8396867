package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeBots(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bots.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBotTableMissingFile(t *testing.T) {
	bots, err := LoadBotTable(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadBotTable missing file error = %v, want nil", err)
	}
	if bots.Count() != 1 || bots.Default().Name != "chaser" {
		t.Fatalf("fallback roster = %v, want the built-in chaser", bots.Names())
	}
}

func TestLoadBotTableRoster(t *testing.T) {
	path := writeBots(t, `
bots:
  - name: sniper
    script: sniper.lua
    reaction: 0.8
    trigger: 0.6
  - name: wall
    script: wall.lua
`)
	bots, err := LoadBotTable(path)
	if err != nil {
		t.Fatalf("LoadBotTable: %v", err)
	}
	if bots.Count() != 2 {
		t.Fatalf("Count = %d, want 2", bots.Count())
	}
	if got := bots.Default().Name; got != "sniper" {
		t.Fatalf("Default = %q, want first entry sniper", got)
	}

	sniper := bots.Get("sniper")
	if sniper == nil || sniper.Reaction != 0.8 || sniper.Trigger != 0.6 {
		t.Fatalf("sniper = %+v, want reaction 0.8 trigger 0.6", sniper)
	}
	// Omitted tuning knobs default to 1.0.
	wall := bots.Get("wall")
	if wall == nil || wall.Reaction != 1.0 || wall.Trigger != 1.0 {
		t.Fatalf("wall = %+v, want reaction 1 trigger 1", wall)
	}
	if bots.Get("ghost") != nil {
		t.Fatal("Get of unknown personality returned an entry")
	}
}

func TestLoadBotTableDuplicateName(t *testing.T) {
	path := writeBots(t, `
bots:
  - name: twin
  - name: twin
`)
	bots, err := LoadBotTable(path)
	if err == nil {
		t.Fatal("duplicate personality = nil error, want failure")
	}
	// The fallback roster still comes back usable.
	if bots == nil || bots.Count() != 1 {
		t.Fatalf("fallback after duplicate = %v", bots)
	}
}

func TestLoadBotTableEmptyList(t *testing.T) {
	path := writeBots(t, "bots: []\n")
	bots, err := LoadBotTable(path)
	if err != nil {
		t.Fatalf("LoadBotTable empty list error = %v, want nil", err)
	}
	if bots.Count() != 1 || bots.Default().Name != "chaser" {
		t.Fatalf("empty roster fallback = %v, want chaser", bots.Names())
	}
}
