// Package npc implements the contradiction gate: the threshold logic that
// decides whether a tracked NPC may break one of its declared never rules
// this tick.
package npc

import (
	"errors"
	"fmt"

	"github.com/pinegrove/cloudcore/internal/tuning"
	"github.com/pinegrove/cloudcore/internal/zone"
	"github.com/rs/zerolog"
)

// #region errors

// ErrUnknownNPC reports an NPC identifier the gate does not track.
var ErrUnknownNPC = errors.New("unknown npc")

// ErrGateClosed reports a RecordContradiction call for an NPC whose gate
// check would not pass this tick. The narration layer must call
// CanContradict first.
var ErrGateClosed = errors.New("contradiction gate closed")

// ErrUnknownRule reports a rule outside the NPC's declared set.
var ErrUnknownRule = errors.New("rule not declared on npc")

// #endregion errors

// #region gate

// Gate evaluates per-NPC contradiction eligibility against the current
// global pressure, the NPC's power staircase, the once-per-session flag,
// and the zone-level cooldown.
type Gate struct {
	cfg    tuning.SimulationConfig
	zones  *zone.Store
	spines map[string]*Spine
	order  []string
	log    zerolog.Logger
}

// NewGate creates a gate over the given spines. Spines are registered once
// at world init from static entity definitions.
func NewGate(cfg tuning.SimulationConfig, zones *zone.Store, spines []Spine, log zerolog.Logger) (*Gate, error) {
	g := &Gate{
		cfg:    cfg,
		zones:  zones,
		spines: make(map[string]*Spine, len(spines)),
		log:    log.With().Str("component", "npcgate").Logger(),
	}
	for i := range spines {
		sp := spines[i]
		if !zones.Has(sp.HomeZone) {
			return nil, fmt.Errorf("npc %s: %w", sp.ID, zone.UnknownZoneError(sp.HomeZone))
		}
		for r := range sp.Rules {
			if !KnownRule(r) {
				return nil, fmt.Errorf("npc %s: unknown rule %q", sp.ID, r)
			}
		}
		g.spines[sp.ID] = &sp
		g.order = append(g.order, sp.ID)
	}
	return g, nil
}

// IDs returns tracked NPC identifiers in registration order.
func (g *Gate) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Spine returns a read-only copy of one NPC's spine.
func (g *Gate) Spine(id string) (Spine, error) {
	sp, ok := g.spines[id]
	if !ok {
		return Spine{}, fmt.Errorf("%w: %q", ErrUnknownNPC, id)
	}
	return *sp, nil
}

// #endregion gate

// #region threshold

// Threshold returns the NPC's effective contradiction threshold: the base
// less a monotonic staircase of its structural power. Powerful NPCs break
// their rules up to 15 pressure points earlier.
func (g *Gate) Threshold(power float64) float64 {
	base := g.cfg.ContradictionBase
	switch {
	case power > 2000:
		return base - 15
	case power > 1500:
		return base - 10
	case power > 1000:
		return base - 5
	}
	return base
}

// #endregion threshold

// #region can-contradict

// CanContradict runs the eligibility checks in veto order: once-per-session
// flag, then zone cooldown, then the pressure threshold.
func (g *Gate) CanContradict(npcID string, level, simTime float64) (Decision, error) {
	sp, ok := g.spines[npcID]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownNPC, npcID)
	}

	threshold := g.Threshold(sp.Power)

	if sp.ContradictionUsed {
		return Decision{Allowed: false, Reason: DenialAlreadyUsed, Threshold: threshold}, nil
	}

	z, err := g.zones.Get(sp.HomeZone)
	if err != nil {
		return Decision{}, err
	}
	if z.LastContradictionTime >= 0 && simTime-z.LastContradictionTime < g.cfg.ZoneCooldownSec {
		return Decision{Allowed: false, Reason: DenialZoneCooldown, Threshold: threshold}, nil
	}

	if level < threshold {
		return Decision{Allowed: false, Reason: DenialBelowPressure, Threshold: threshold}, nil
	}

	return Decision{Allowed: true, Threshold: threshold}, nil
}

// #endregion can-contradict

// #region record

// RecordContradiction commits a contradiction the narration layer chose to
// play out. It re-runs the gate check, burns the once-per-session flag,
// stamps the zone cooldown, and returns the event for the tick snapshot.
func (g *Gate) RecordContradiction(npcID string, rule RuleID, level, simTime float64) (ContradictionEvent, error) {
	sp, ok := g.spines[npcID]
	if !ok {
		return ContradictionEvent{}, fmt.Errorf("%w: %q", ErrUnknownNPC, npcID)
	}
	if !sp.HasRule(rule) {
		return ContradictionEvent{}, fmt.Errorf("%w: npc %s rule %q", ErrUnknownRule, npcID, rule)
	}

	dec, err := g.CanContradict(npcID, level, simTime)
	if err != nil {
		return ContradictionEvent{}, err
	}
	if !dec.Allowed {
		return ContradictionEvent{}, fmt.Errorf("%w: npc %s (%s)", ErrGateClosed, npcID, dec.Reason)
	}

	sp.ContradictionUsed = true
	if err := g.zones.MarkContradiction(sp.HomeZone, simTime); err != nil {
		return ContradictionEvent{}, err
	}

	g.log.Info().Str("npc", npcID).Str("zone", sp.HomeZone).Str("rule", string(rule)).
		Float64("level", level).Msg("contradiction recorded")

	return ContradictionEvent{
		NPCID:   npcID,
		ZoneID:  sp.HomeZone,
		Rule:    rule,
		SimTime: simTime,
	}, nil
}

// #endregion record

// #region restore

// SetUsed reapplies a persisted once-per-session flag. Canon reload only.
func (g *Gate) SetUsed(npcID string, used bool) error {
	sp, ok := g.spines[npcID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNPC, npcID)
	}
	sp.ContradictionUsed = used
	return nil
}

// Reset clears every once-per-session flag. World reset only.
func (g *Gate) Reset() {
	for _, sp := range g.spines {
		sp.ContradictionUsed = false
	}
}

// #endregion restore
