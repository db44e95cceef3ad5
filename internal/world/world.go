// Package world is the tick orchestrator. A World owns the global pressure
// state, the bleed tier machine, the zone store, the oracle score set, and
// the NPC contradiction gate, and advances them in a fixed order per tick.
//
// A World is not safe for concurrent use. External transports must
// serialize all calls into a single logical tick sequence; the pressure
// delta is order-dependent (clamping, tier hysteresis), so concurrent ticks
// against one World are never meaningful.
package world

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pinegrove/cloudcore/internal/audit"
	"github.com/pinegrove/cloudcore/internal/npc"
	"github.com/pinegrove/cloudcore/internal/oracle"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/snapshot"
	"github.com/pinegrove/cloudcore/internal/tier"
	"github.com/pinegrove/cloudcore/internal/tuning"
	"github.com/pinegrove/cloudcore/internal/zone"
)

// #region world-struct

// World is one independent simulation instance. Multiple worlds can coexist
// in a process; nothing here is package-global.
type World struct {
	cfg tuning.SimulationConfig

	engine   *pressure.Engine
	state    pressure.State
	tiers    *tier.Machine
	zones    *zone.Store
	scores   *oracle.Set
	gate     *npc.Gate
	auditor  *audit.Harness
	log      zerolog.Logger
	tickNum  uint64

	// Contradictions recorded by the narration layer between ticks; drained
	// into the next snapshot's event list.
	pending []snapshot.Event
}

// Options selects the static zone list and tracked NPC cast.
type Options struct {
	Zones  []zone.Definition
	Spines []npc.Spine
}

// New creates a world at cold start: zero pressure, calm, tier 0, all zones
// at baseline. Config is validated and copied; later mutation of the
// caller's copy has no effect.
func New(cfg tuning.SimulationConfig, opts Options, log zerolog.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Zones == nil {
		opts.Zones = zone.DefaultZones()
	}

	zones := zone.NewStore(cfg, opts.Zones)
	gate, err := npc.NewGate(cfg, zones, opts.Spines, log)
	if err != nil {
		return nil, err
	}

	return &World{
		cfg:     cfg,
		engine:  pressure.NewEngine(cfg),
		state:   pressure.NewState(),
		tiers:   tier.NewMachine(cfg),
		zones:   zones,
		scores:  oracle.NewSet(log),
		gate:    gate,
		auditor: audit.NewHarness(cfg.Strict),
		log:     log.With().Str("component", "world").Logger(),
	}, nil
}

// #endregion world-struct

// #region tick

// Tick advances the simulation by dt simulated seconds and returns the
// frame snapshot. Update order is fixed: pressure, tier machine, zones,
// snapshot assembly. dt=0 is a valid no-op that returns a snapshot without
// touching any mutable state; dt outside (0, max] rejects the whole tick
// atomically with ErrInvalidTimestep.
func (w *World) Tick(dt float64, player *pressure.PlayerEvent, npcEvents []pressure.NPCEvent) (snapshot.Frame, error) {
	if dt == 0 {
		return w.buildFrame(nil), nil
	}

	// Validate the referenced zone before anything mutates, so a rejected
	// tick is always safe to retry.
	var zoneAggregate float64
	if player != nil && player.Zone != "" {
		z, err := w.zones.Get(player.Zone)
		if err != nil {
			return snapshot.Frame{}, err
		}
		zoneAggregate = z.QbitAggregate
	}

	next, bd, err := w.engine.Update(w.state, dt, player, npcEvents, zoneAggregate)
	if err != nil {
		return snapshot.Frame{}, err
	}
	w.state = next

	tierEvents := w.tiers.Advance(dt, w.state)

	if err := w.zones.Update(dt, player); err != nil {
		// Zone was validated above; reaching this is a programming error.
		return snapshot.Frame{}, err
	}

	bleed := w.tiers.Tier()
	res := w.auditor.Run(&w.state, &bleed, w.zones.Live())
	if !res.Passed {
		w.log.Error().Str("reason", res.Reason).Msg("post-tick audit clamped state")
		w.tiers.Restore(bleed)
	}

	w.tickNum++
	w.log.Debug().Uint64("tick", w.tickNum).Float64("dt", dt).
		Float64("level", w.state.Level).Str("mood", string(w.state.Mood)).
		Str("trend", string(w.state.Trend)).Int("tier", w.tiers.Tier()).
		Float64("delta", bd.Total).Msg("tick complete")

	events := make([]snapshot.Event, 0, len(tierEvents)+len(w.pending))
	for _, ev := range tierEvents {
		events = append(events, snapshot.TierEvent(ev))
	}
	events = append(events, w.pending...)
	w.pending = nil

	return w.buildFrame(events), nil
}

func (w *World) buildFrame(events []snapshot.Event) snapshot.Frame {
	zs := w.zones.Live()
	out := snapshot.Frame{
		FrameID: uuid.NewString(),
		SimTime: w.state.SimTime,
		Cloud:   snapshot.CloudFrom(w.state, w.tiers.Tier()),
		Zones:   make([]snapshot.Zone, 0, len(zs)),
		Events:  events,
	}
	if out.Events == nil {
		out.Events = []snapshot.Event{}
	}
	for _, z := range zs {
		out.Zones = append(out.Zones, snapshot.ZoneFrom(*z))
	}
	return out
}

// #endregion tick

// #region queries

// Pressure returns a copy of the global pressure state.
func (w *World) Pressure() pressure.State { return w.state }

// BleedTier returns the current bleed tier.
func (w *World) BleedTier() int { return w.tiers.Tier() }

// ZoneState returns a read-only snapshot of one zone.
func (w *World) ZoneState(id string) (zone.Microstate, error) {
	return w.zones.Get(id)
}

// ZoneIDs returns the static zone list in declaration order.
func (w *World) ZoneIDs() []string { return w.zones.IDs() }

// NPCIDs returns the tracked NPC identifiers.
func (w *World) NPCIDs() []string { return w.gate.IDs() }

// NPCSpine returns a read-only copy of one NPC's spine.
func (w *World) NPCSpine(id string) (npc.Spine, error) { return w.gate.Spine(id) }

// ArtifactWeight maps an entity's charisma to [0,1] discoverability.
func (w *World) ArtifactWeight(entityID string) float64 {
	return w.scores.ArtifactWeight(entityID, w.cfg.CharismaNorm)
}

// #endregion queries

// #region oracle-feed

// SetEntityScore records an oracle score triple and refreshes the sums of
// whatever zone the entity is attributed to.
func (w *World) SetEntityScore(entityID string, sc oracle.Score) error {
	w.scores.SetScore(entityID, sc)
	if z, ok := w.scores.Zone(entityID); ok {
		return w.zones.ApplySums(z, w.scores.SumsFor(z))
	}
	return nil
}

// AttributeEntity moves an entity's zone attribution and recomputes the
// sums for both the old and new zone.
func (w *World) AttributeEntity(entityID, zoneID string) error {
	if !w.zones.Has(zoneID) {
		return zone.UnknownZoneError(zoneID)
	}
	prev, had := w.scores.Zone(entityID)
	w.scores.Attribute(entityID, zoneID)
	if had && prev != zoneID {
		if err := w.zones.ApplySums(prev, w.scores.SumsFor(prev)); err != nil {
			return err
		}
	}
	return w.zones.ApplySums(zoneID, w.scores.SumsFor(zoneID))
}

// DetachEntity removes an entity from its zone and refreshes that zone's
// sums.
func (w *World) DetachEntity(entityID string) error {
	prev, had := w.scores.Zone(entityID)
	if !had {
		return nil
	}
	w.scores.Detach(entityID)
	return w.zones.ApplySums(prev, w.scores.SumsFor(prev))
}

// #endregion oracle-feed

// #region contradiction

// CanContradict runs the gate check for one NPC against current pressure.
func (w *World) CanContradict(npcID string) (npc.Decision, error) {
	return w.gate.CanContradict(npcID, w.state.Level, w.state.SimTime)
}

// RecordContradiction commits a contradiction chosen by the narration
// layer. The event lands in the next tick's snapshot.
func (w *World) RecordContradiction(npcID string, rule npc.RuleID) (npc.ContradictionEvent, error) {
	ev, err := w.gate.RecordContradiction(npcID, rule, w.state.Level, w.state.SimTime)
	if err != nil {
		return npc.ContradictionEvent{}, err
	}
	w.pending = append(w.pending, snapshot.ContradictionEvent(ev))
	return ev, nil
}

// #endregion contradiction

// #region reset

// Reset returns the world to cold start: zero pressure, tier 0, baseline
// zones, cleared resonance, cleared contradiction flags, fresh jitter
// stream. This is the only path that lowers resonance or restores a spent
// contradiction.
func (w *World) Reset() {
	w.state = pressure.NewState()
	w.engine.ReseedJitter()
	w.tiers.Reset()
	w.zones.Reset()
	w.scores.Reset()
	w.gate.Reset()
	w.auditor.ResetBaseline()
	w.pending = nil
	w.tickNum = 0
	w.log.Info().Msg("world reset")
}

// #endregion reset
