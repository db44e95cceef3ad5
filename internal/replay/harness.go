package replay

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/pinegrove/cloudcore/internal/npc"
	"github.com/pinegrove/cloudcore/internal/oracle"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/snapshot"
	"github.com/pinegrove/cloudcore/internal/tuning"
	"github.com/pinegrove/cloudcore/internal/world"
)

// #region types

// TickResult captures the outcome of one replayed tick.
type TickResult struct {
	Tick  int
	Frame snapshot.Frame

	// Contradiction attempts made after this tick, in fixture order.
	Contradictions []ContradictionResult
}

// ContradictionResult is one narration-layer attempt during replay.
type ContradictionResult struct {
	NPCID   string
	Rule    string
	Allowed bool
	Reason  string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTicks     int
	PeakLevel      float64
	FinalLevel     float64
	FinalTier      int
	TierChanges    int
	Contradictions int
	Rejected       int // contradiction attempts the gate refused
}

// #endregion types

// #region replay

// Run replays a fixture through a fresh world. Entirely in-memory and
// deterministic: the same fixture always yields the same results.
func Run(f *Fixture, log zerolog.Logger) ([]TickResult, Summary, error) {
	cfg := tuning.Default()
	if f.Config != nil {
		cfg = *f.Config
	}

	spines := npc.DefaultSpines()
	if len(f.Spines) > 0 {
		spines = make([]npc.Spine, 0, len(f.Spines))
		for i := range f.Spines {
			spines = append(spines, f.Spines[i].ToSpine())
		}
	}

	w, err := world.New(cfg, world.Options{Spines: spines}, log)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("build world: %w", err)
	}

	for _, ent := range f.Entities {
		if err := w.SetEntityScore(ent.ID, oracle.Score{
			Power: ent.Power, Charisma: ent.Charisma, Overall: ent.Overall,
		}); err != nil {
			return nil, Summary{}, fmt.Errorf("seed entity %s: %w", ent.ID, err)
		}
		if ent.Zone != "" {
			if err := w.AttributeEntity(ent.ID, ent.Zone); err != nil {
				return nil, Summary{}, fmt.Errorf("attribute entity %s: %w", ent.ID, err)
			}
		}
	}

	var results []TickResult
	var sum Summary

	for i, tk := range f.Ticks {
		var player *pressure.PlayerEvent
		if tk.Player != nil {
			pe := tk.Player.ToPlayerEvent()
			player = &pe
		}
		events := make([]pressure.NPCEvent, 0, len(tk.NPCEvents))
		for j := range tk.NPCEvents {
			events = append(events, tk.NPCEvents[j].ToNPCEvent())
		}

		frame, err := w.Tick(tk.Dt, player, events)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("tick %d: %w", i, err)
		}

		res := TickResult{Tick: i, Frame: frame}
		for _, c := range tk.Contradictions {
			cr := ContradictionResult{NPCID: c.NPCID, Rule: c.Rule}
			if _, err := w.RecordContradiction(c.NPCID, npc.RuleID(c.Rule)); err != nil {
				cr.Reason = err.Error()
				sum.Rejected++
			} else {
				cr.Allowed = true
				sum.Contradictions++
			}
			res.Contradictions = append(res.Contradictions, cr)
		}
		results = append(results, res)

		if frame.Cloud.Level > sum.PeakLevel {
			sum.PeakLevel = frame.Cloud.Level
		}
		for _, ev := range frame.Events {
			if ev.Type == snapshot.EventTierChanged {
				sum.TierChanges++
			}
		}
	}

	sum.TotalTicks = len(f.Ticks)
	sum.FinalLevel = w.Pressure().Level
	sum.FinalTier = w.BleedTier()
	return results, sum, nil
}

// #endregion replay

// #region verify

// Verify checks fixture expectations against replay results. Returns one
// failure description per missed expectation, empty when all pass.
func Verify(f *Fixture, results []TickResult) []string {
	var failures []string
	for _, exp := range f.Expected {
		if exp.Tick < 0 || exp.Tick >= len(results) {
			failures = append(failures, fmt.Sprintf("expectation for tick %d out of range", exp.Tick))
			continue
		}
		fr := results[exp.Tick].Frame
		tol := exp.Tolerance
		if tol == 0 {
			tol = 1e-9
		}
		if math.Abs(fr.Cloud.Level-exp.Level) > tol {
			failures = append(failures, fmt.Sprintf(
				"tick %d: level %.4f, want %.4f ± %.4f", exp.Tick, fr.Cloud.Level, exp.Level, tol))
		}
		if exp.Mood != "" && fr.Cloud.Mood != exp.Mood {
			failures = append(failures, fmt.Sprintf(
				"tick %d: mood %s, want %s", exp.Tick, fr.Cloud.Mood, exp.Mood))
		}
		if exp.BleedTier != nil && fr.Cloud.BleedTier != *exp.BleedTier {
			failures = append(failures, fmt.Sprintf(
				"tick %d: bleed tier %d, want %d", exp.Tick, fr.Cloud.BleedTier, *exp.BleedTier))
		}
	}
	return failures
}

// #endregion verify
