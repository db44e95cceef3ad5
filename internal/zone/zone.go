// Package zone maintains per-zone microstates: local turbulence, the
// monotone resonance accumulator, and the aggregated entity influence for
// entities currently attributed to the zone.
package zone

import (
	"errors"
	"fmt"
	"math"

	"github.com/pinegrove/cloudcore/internal/oracle"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/tuning"
)

// #region errors

// ErrUnknownZone reports a zone identifier outside the static zone list.
var ErrUnknownZone = errors.New("unknown zone")

// UnknownZoneError wraps ErrUnknownZone with the offending identifier.
func UnknownZoneError(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownZone, id)
}

// #endregion errors

// #region zone-list

// The static zone list. Zones are created once at world init and never
// destroyed.
const (
	Atrium          = "ATRIUM"
	FoodCourt       = "FOOD_COURT"
	FCArcade        = "FC_ARCADE"
	ServiceHall     = "SERVICE_HALL"
	AnchorEast      = "ANCHOR_EAST"
	AnchorWest      = "ANCHOR_WEST"
	Cinema          = "CINEMA"
	FountainCourt   = "FOUNTAIN_COURT"
	ParkingDeck     = "PARKING_DECK"
	MaintenanceWing = "MAINTENANCE_WING"
	LoadingDock     = "LOADING_DOCK"
)

// DefaultZones returns the canonical zone set with baseline turbulence.
// Back-of-house zones idle a little rougher than the public floor.
func DefaultZones() []Definition {
	return []Definition{
		{ID: Atrium, BaselineTurbulence: 0.10},
		{ID: FoodCourt, BaselineTurbulence: 0.15},
		{ID: FCArcade, BaselineTurbulence: 0.20},
		{ID: ServiceHall, BaselineTurbulence: 0.30},
		{ID: AnchorEast, BaselineTurbulence: 0.10},
		{ID: AnchorWest, BaselineTurbulence: 0.10},
		{ID: Cinema, BaselineTurbulence: 0.12},
		{ID: FountainCourt, BaselineTurbulence: 0.08},
		{ID: ParkingDeck, BaselineTurbulence: 0.18},
		{ID: MaintenanceWing, BaselineTurbulence: 0.35},
		{ID: LoadingDock, BaselineTurbulence: 0.25},
	}
}

// Definition declares one zone of the static list.
type Definition struct {
	ID                 string
	BaselineTurbulence float64
}

// #endregion zone-list

// #region microstate

// Microstate is the per-zone mutable record.
type Microstate struct {
	ID                 string
	Turbulence         float64
	BaselineTurbulence float64
	Resonance          float64 // monotone accumulator, reset only by world reset

	QbitAggregate float64
	QbitPower     float64
	QbitCharisma  float64

	// LastContradictionTime is simulated seconds of the most recent NPC
	// contradiction hosted here. Negative means never.
	LastContradictionTime float64
}

// #endregion microstate

// #region store

// Store holds every zone microstate, keyed by zone ID.
type Store struct {
	cfg   tuning.SimulationConfig
	zones map[string]*Microstate
	order []string
}

// NewStore builds the store from a static zone list.
func NewStore(cfg tuning.SimulationConfig, defs []Definition) *Store {
	s := &Store{
		cfg:   cfg,
		zones: make(map[string]*Microstate, len(defs)),
	}
	for _, d := range defs {
		s.zones[d.ID] = &Microstate{
			ID:                    d.ID,
			Turbulence:            d.BaselineTurbulence,
			BaselineTurbulence:    d.BaselineTurbulence,
			LastContradictionTime: -1,
		}
		s.order = append(s.order, d.ID)
	}
	return s
}

// IDs returns the zone identifiers in declaration order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether a zone identifier is in the static list.
func (s *Store) Has(id string) bool {
	_, ok := s.zones[id]
	return ok
}

// Live returns the mutable microstates in declaration order. Owned by the
// tick call stack for audit and snapshot assembly; never retained across
// ticks.
func (s *Store) Live() []*Microstate {
	out := make([]*Microstate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.zones[id])
	}
	return out
}

// Get returns a read-only snapshot of one zone's microstate.
func (s *Store) Get(id string) (Microstate, error) {
	z, ok := s.zones[id]
	if !ok {
		return Microstate{}, UnknownZoneError(id)
	}
	return *z, nil
}

// #endregion store

// #region update

// Update runs one tick of zone dynamics. The occupied zone's turbulence is
// nudged toward baseline plus its entity aggregate contribution; every
// other zone decays toward its own baseline. Discovery events feed the
// resonance accumulator, amplified by the zone's summed charisma.
func (s *Store) Update(dt float64, player *pressure.PlayerEvent) error {
	playerZone := ""
	if player != nil && player.Zone != "" {
		if !s.Has(player.Zone) {
			return UnknownZoneError(player.Zone)
		}
		playerZone = player.Zone
	}

	for _, id := range s.order {
		z := s.zones[id]
		if id == playerZone {
			target := z.BaselineTurbulence + z.QbitAggregate*s.cfg.TurbulenceScale
			z.Turbulence += (target - z.Turbulence) * approach(dt, s.cfg.TurbulenceApproach)
		} else {
			z.Turbulence += (z.BaselineTurbulence - z.Turbulence) * approach(dt, s.cfg.TurbulenceDecay)
		}
		if z.Turbulence < 0 {
			z.Turbulence = 0
		}
	}

	if player != nil && player.Action == pressure.ActionDiscovery && playerZone != "" {
		z := s.zones[playerZone]
		amp := 1 + z.QbitCharisma/s.cfg.CharismaNorm*s.cfg.ResonanceModifier
		z.Resonance += s.cfg.ResonanceIncrement * amp
	}

	return nil
}

// approach converts a rate into a stable step fraction for this dt.
func approach(dt, rate float64) float64 {
	return 1 - math.Exp(-dt*rate)
}

// #endregion update

// #region influence

// ApplySums overwrites a zone's entity aggregation with freshly computed
// sums. Called whenever an entity's zone attribution or score changes so
// the aggregates never drift from the oracle's current values.
func (s *Store) ApplySums(id string, sums oracle.ZoneSums) error {
	z, ok := s.zones[id]
	if !ok {
		return UnknownZoneError(id)
	}
	z.QbitAggregate = sums.Aggregate
	z.QbitPower = sums.Power
	z.QbitCharisma = sums.Charisma
	return nil
}

// MarkContradiction stamps the zone-level cooldown clock. Owned by the
// contradiction gate; this store only keeps the value.
func (s *Store) MarkContradiction(id string, simTime float64) error {
	z, ok := s.zones[id]
	if !ok {
		return UnknownZoneError(id)
	}
	z.LastContradictionTime = simTime
	return nil
}

// #endregion influence

// #region reset

// Reset returns every zone to baseline turbulence, zero resonance, and a
// cleared cooldown clock. Entity aggregates are left to the caller, which
// resets the oracle set alongside.
func (s *Store) Reset() {
	for _, z := range s.zones {
		z.Turbulence = z.BaselineTurbulence
		z.Resonance = 0
		z.QbitAggregate = 0
		z.QbitPower = 0
		z.QbitCharisma = 0
		z.LastContradictionTime = -1
	}
}

// RestoreResonance reapplies a persisted resonance value. Used by the canon
// layer on reload; turbulence stays at baseline per the persistence
// contract.
func (s *Store) RestoreResonance(id string, resonance float64) error {
	z, ok := s.zones[id]
	if !ok {
		return UnknownZoneError(id)
	}
	if resonance < 0 {
		resonance = 0
	}
	z.Resonance = resonance
	return nil
}

// #endregion reset
