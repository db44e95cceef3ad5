package world

import (
	"github.com/pinegrove/cloudcore/internal/canon"
	"github.com/pinegrove/cloudcore/internal/pressure"
)

// #region export

// ExportCanon captures the durable slice of world state: level, bleed tier,
// sim time, cumulative resonance, and spent contradiction flags. Turbulence
// and wind-down timers are ephemeral and never leave the process.
func (w *World) ExportCanon() canon.Record {
	rec := canon.Record{
		Level:     w.state.Level,
		BleedTier: w.tiers.Tier(),
		SimTime:   w.state.SimTime,
		Resonance: make(map[string]float64),
		Used:      make(map[string]bool),
	}
	for _, z := range w.zones.Live() {
		rec.Resonance[z.ID] = z.Resonance
	}
	for _, id := range w.gate.IDs() {
		sp, _ := w.gate.Spine(id)
		rec.Used[id] = sp.ContradictionUsed
	}
	return rec
}

// #endregion export

// #region restore

// ApplyCanon restores a persisted record onto this world. Mood is rederived
// from the level, trend resets to stable, turbulence returns to baseline,
// and all wind-down timers start fresh. Zones or NPCs the record does not
// know keep their cold-start values.
func (w *World) ApplyCanon(rec canon.Record) error {
	w.state = pressure.State{
		Level:   clampLevel(rec.Level),
		Mood:    pressure.MoodFromLevel(clampLevel(rec.Level)),
		Trend:   pressure.TrendStable,
		SimTime: rec.SimTime,
	}
	w.tiers.Restore(rec.BleedTier)
	w.zones.Reset()
	w.auditor.ResetBaseline()

	for id, res := range rec.Resonance {
		if err := w.zones.RestoreResonance(id, res); err != nil {
			return err
		}
	}
	for id, used := range rec.Used {
		if err := w.gate.SetUsed(id, used); err != nil {
			return err
		}
	}

	// Entity attributions live outside the canon; recompute whatever sums
	// the current oracle set implies.
	for _, id := range w.zones.IDs() {
		if err := w.zones.ApplySums(id, w.scores.SumsFor(id)); err != nil {
			return err
		}
	}

	w.log.Info().Str("version", rec.VersionID).Float64("level", w.state.Level).
		Int("tier", w.tiers.Tier()).Msg("canon restored")
	return nil
}

func clampLevel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// #endregion restore
