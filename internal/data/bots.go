package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BotEntry is one practice-bot personality. Reaction scales the paddle
// acceleration the personality may command; Trigger scales how often a
// requested shot actually fires. Both default to 1.0.
type BotEntry struct {
	Name     string  `yaml:"name"`
	Script   string  `yaml:"script"` // lua file under the script dir; empty = built-in chase
	Reaction float64 `yaml:"reaction"`
	Trigger  float64 `yaml:"trigger"`
}

type botsFile struct {
	Bots []BotEntry `yaml:"bots"`
}

// BotTable is the practice-bot roster indexed by personality name.
type BotTable struct {
	bots  map[string]*BotEntry
	order []string
}

// Get returns a personality by name, or nil.
func (t *BotTable) Get(name string) *BotEntry {
	return t.bots[name]
}

// Default returns the first roster entry. The roster is never empty.
func (t *BotTable) Default() *BotEntry {
	return t.bots[t.order[0]]
}

// Names lists personalities in file order.
func (t *BotTable) Names() []string {
	return t.order
}

func (t *BotTable) Count() int {
	return len(t.order)
}

// LoadBotTable loads the bot roster from a YAML file. A missing file is
// not an error; the built-in chase bot is the whole roster then.
func LoadBotTable(path string) (*BotTable, error) {
	fallback := builtinRoster()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("read bots: %w", err)
	}
	var f botsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fallback, fmt.Errorf("parse bots: %w", err)
	}
	if len(f.Bots) == 0 {
		return fallback, nil
	}

	t := &BotTable{bots: make(map[string]*BotEntry, len(f.Bots))}
	for i := range f.Bots {
		e := &f.Bots[i]
		if e.Reaction == 0 {
			e.Reaction = 1.0
		}
		if e.Trigger == 0 {
			e.Trigger = 1.0
		}
		if _, dup := t.bots[e.Name]; dup {
			return fallback, fmt.Errorf("parse bots: duplicate personality %q", e.Name)
		}
		t.bots[e.Name] = e
		t.order = append(t.order, e.Name)
	}
	return t, nil
}

func builtinRoster() *BotTable {
	e := &BotEntry{Name: "chaser", Reaction: 1.0, Trigger: 1.0}
	return &BotTable{
		bots:  map[string]*BotEntry{e.Name: e},
		order: []string{e.Name},
	}
}
