package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pinegrove/cloudcore/internal/npc"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/tuning"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a recorded
// input sequence plus optional expectations. Replaying a fixture through a
// fresh world with the same config must reproduce identical output.
type Fixture struct {
	Description string                   `json:"description"`
	Config      *tuning.SimulationConfig `json:"config,omitempty"` // nil = defaults
	Entities    []FixtureEntity          `json:"entities,omitempty"`
	Spines      []FixtureSpine           `json:"spines,omitempty"` // empty = default cast
	Ticks       []FixtureTick            `json:"ticks"`
	Expected    []FixtureExpectation     `json:"expected,omitempty"`
}

// FixtureEntity seeds one oracle score and zone attribution before tick 0.
type FixtureEntity struct {
	ID       string  `json:"id"`
	Zone     string  `json:"zone"`
	Power    float64 `json:"power"`
	Charisma float64 `json:"charisma"`
	Overall  float64 `json:"overall"`
}

// FixtureSpine mirrors npc.Spine with JSON tags.
type FixtureSpine struct {
	ID       string   `json:"id"`
	HomeZone string   `json:"home_zone"`
	Power    float64  `json:"power"`
	Rules    []string `json:"rules"`
}

// FixturePlayer mirrors pressure.PlayerEvent with JSON tags.
type FixturePlayer struct {
	Action string `json:"action"`
	Zone   string `json:"zone"`
	Entity string `json:"entity,omitempty"`
}

// FixtureNPCEvent mirrors pressure.NPCEvent with JSON tags.
type FixtureNPCEvent struct {
	Kind  string  `json:"kind"`
	Zone  string  `json:"zone,omitempty"`
	Delta float64 `json:"delta"`
}

// FixtureContradiction is a narration-layer contradiction attempt made
// right after the tick resolves.
type FixtureContradiction struct {
	NPCID string `json:"npc_id"`
	Rule  string `json:"rule"`
}

// FixtureTick is one recorded tick input.
type FixtureTick struct {
	Dt             float64                `json:"dt"`
	Player         *FixturePlayer         `json:"player,omitempty"`
	NPCEvents      []FixtureNPCEvent      `json:"npc_events,omitempty"`
	Contradictions []FixtureContradiction `json:"contradictions,omitempty"`
}

// FixtureExpectation pins the observable state after a given tick index.
type FixtureExpectation struct {
	Tick      int     `json:"tick"`
	Level     float64 `json:"level"`
	Tolerance float64 `json:"tolerance"`
	Mood      string  `json:"mood,omitempty"`
	BleedTier *int    `json:"bleed_tier,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToSpine converts a FixtureSpine to the domain type.
func (fs *FixtureSpine) ToSpine() npc.Spine {
	rules := make(map[npc.RuleID]bool, len(fs.Rules))
	for _, r := range fs.Rules {
		rules[npc.RuleID(r)] = true
	}
	return npc.Spine{
		ID:       fs.ID,
		HomeZone: fs.HomeZone,
		Power:    fs.Power,
		Rules:    rules,
	}
}

// ToPlayerEvent converts a FixturePlayer to the domain type.
func (fp *FixturePlayer) ToPlayerEvent() pressure.PlayerEvent {
	return pressure.PlayerEvent{
		Action: pressure.ActionKind(fp.Action),
		Zone:   fp.Zone,
		Entity: fp.Entity,
	}
}

// ToNPCEvent converts a FixtureNPCEvent to the domain type.
func (fe *FixtureNPCEvent) ToNPCEvent() pressure.NPCEvent {
	return pressure.NPCEvent{Kind: fe.Kind, Zone: fe.Zone, Delta: fe.Delta}
}

// #endregion fixture-loader
