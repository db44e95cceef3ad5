package pressure

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/pinegrove/cloudcore/internal/tuning"
)

// #region errors

// ErrInvalidTimestep reports a dt outside the accepted window. The update is
// rejected whole; no state mutation happens on this path.
var ErrInvalidTimestep = errors.New("invalid timestep")

// InvalidTimestepError wraps ErrInvalidTimestep with the offending value.
func InvalidTimestepError(dt, max float64) error {
	return fmt.Errorf("%w: dt=%.4f outside (0, %.1f]", ErrInvalidTimestep, dt, max)
}

// #endregion errors

// #region engine

// Engine owns the global pressure update. It combines four weighted signal
// sources into a per-tick delta, clamps the level to [0,100], and rederives
// mood and trend. Deterministic: the jitter stream is seeded from config, so
// identical input sequences produce identical levels.
type Engine struct {
	cfg tuning.SimulationConfig
	rng *rand.Rand
}

// NewEngine creates a pressure engine from an immutable config.
func NewEngine(cfg tuning.SimulationConfig) *Engine {
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// ReseedJitter rewinds the jitter stream. Used by world reset so a reset
// world replays like a fresh one.
func (e *Engine) ReseedJitter() {
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))
}

// #endregion engine

// #region update

// Update computes the next pressure state from the current one. dt must be
// in (0, MaxTimestepSec]; anything else is rejected with ErrInvalidTimestep
// and the input state is returned untouched. zoneAggregate is the qbit
// aggregate of the zone the player event occurred in (zero when no event).
func (e *Engine) Update(st State, dt float64, player *PlayerEvent, npcEvents []NPCEvent, zoneAggregate float64) (State, Breakdown, error) {
	if dt <= 0 || dt > e.cfg.MaxTimestepSec {
		return st, Breakdown{}, InvalidTimestepError(dt, e.cfg.MaxTimestepSec)
	}

	var bd Breakdown

	// 1. Player-driven delta.
	if player != nil {
		bd.Player = e.cfg.PlayerWeight * e.actionDelta(*player, dt)
	}

	// 2. NPC-driven delta: sum of per-event contributions this tick.
	var npcSum float64
	for _, ev := range npcEvents {
		npcSum += ev.Delta
	}
	bd.NPC = e.cfg.NPCWeight * npcSum

	// 3. Entity-influence delta, capped per tick.
	entity := zoneAggregate * e.cfg.EntityScale
	if entity > e.cfg.EntityDeltaCap {
		entity = e.cfg.EntityDeltaCap
	}
	bd.Entity = e.cfg.EntityWeight * entity

	// 4. Ambient drift: slow sinusoid plus seeded jitter plus session fatigue.
	bd.Ambient = e.cfg.AmbientWeight * e.ambientDelta(st.SimTime, dt)

	bd.Total = bd.Player + bd.NPC + bd.Entity + bd.Ambient

	next := st
	next.Level = clamp(st.Level+bd.Total, 0, 100)
	next.LastDelta = bd.Total
	next.SimTime = st.SimTime + dt
	next.Mood = MoodFromLevel(next.Level)
	next.Trend = e.trendFromDelta(bd.Total)

	return next, bd, nil
}

func (e *Engine) actionDelta(ev PlayerEvent, dt float64) float64 {
	switch ev.Action {
	case ActionEnterQuietZone:
		return e.cfg.DeltaEnterQuietZone
	case ActionWitnessContradiction:
		return e.cfg.DeltaWitnessContradiction
	case ActionLingerBleedZone:
		return e.cfg.DeltaLingerBleedPerSec * dt
	case ActionDiscovery:
		return e.cfg.DeltaDiscovery
	}
	return 0
}

func (e *Engine) ambientDelta(simTime, dt float64) float64 {
	drift := e.cfg.DriftAmplitude * math.Sin(2*math.Pi*simTime/e.cfg.DriftPeriodSec)
	jitter := (e.rng.Float64()*2 - 1) * e.cfg.JitterAmplitude
	fatigue := 0.0
	if simTime > e.cfg.FatigueAfterSec {
		fatigue = (simTime - e.cfg.FatigueAfterSec) * e.cfg.FatigueRate
	}
	return (drift + fatigue) * dt + jitter
}

func (e *Engine) trendFromDelta(delta float64) Trend {
	switch {
	case math.Abs(delta) > e.cfg.SpikeThreshold:
		return TrendSpiking
	case delta > e.cfg.TrendDeadband:
		return TrendRising
	case delta < -e.cfg.TrendDeadband:
		return TrendFalling
	}
	return TrendStable
}

// #endregion update

// #region mood-function

// Mood breakpoints are fixed: the external contract documents the four
// bands at 25/50/75 and downstream narration keys off them.
const (
	tensionAt  = 25.0
	surgeAt    = 50.0
	criticalAt = 75.0
)

// MoodFromLevel is a pure function of the level. Boundary values land in the
// upper band: 24.999 is CALM, 25.0 is TENSION.
func MoodFromLevel(level float64) Mood {
	switch {
	case level >= criticalAt:
		return MoodCritical
	case level >= surgeAt:
		return MoodSurge
	case level >= tensionAt:
		return MoodTension
	}
	return MoodCalm
}

// #endregion mood-function

// #region helpers

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
