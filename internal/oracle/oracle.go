// Package oracle holds externally computed entity influence scores. The
// core never derives power or charisma itself; it stores whatever the
// scoring service supplied and sums the numbers per zone.
package oracle

import (
	"github.com/rs/zerolog"
)

// #region score

// Score is one entity's influence triple as supplied by the external
// scoring service. Nominal ranges: power and charisma in [0,3000], overall
// in [0,6000]. Out-of-range values are accepted as-is; consumers that need
// bounded numbers clamp at the point of use.
type Score struct {
	Power    float64
	Charisma float64
	Overall  float64
}

// ZoneSums is the per-zone aggregation of attributed entity scores.
type ZoneSums struct {
	Aggregate float64 // sum of overall
	Power     float64 // sum of power
	Charisma  float64 // sum of charisma
}

// #endregion score

// #region set

// Set tracks entity scores and entity→zone attribution. Attribution of an
// unscored entity is a recoverable condition: the entity contributes zero
// influence until its score arrives, and the miss is logged, never fatal.
type Set struct {
	scores      map[string]Score
	attribution map[string]string // entity id → zone id
	log         zerolog.Logger
}

// NewSet creates an empty score set.
func NewSet(log zerolog.Logger) *Set {
	return &Set{
		scores:      make(map[string]Score),
		attribution: make(map[string]string),
		log:         log.With().Str("component", "oracle").Logger(),
	}
}

// SetScore records or replaces an entity's score triple.
func (s *Set) SetScore(entityID string, sc Score) {
	s.scores[entityID] = sc
}

// Score returns the entity's score and whether the oracle has scored it.
func (s *Set) Score(entityID string) (Score, bool) {
	sc, ok := s.scores[entityID]
	return sc, ok
}

// Attribute associates an entity with a zone, replacing any prior
// attribution. Unknown entities still attach, with zero influence.
func (s *Set) Attribute(entityID, zoneID string) {
	if _, ok := s.scores[entityID]; !ok {
		s.log.Warn().Str("entity", entityID).Str("zone", zoneID).
			Msg("attributing unscored entity, counting zero influence")
	}
	s.attribution[entityID] = zoneID
}

// Detach removes an entity's zone attribution.
func (s *Set) Detach(entityID string) {
	delete(s.attribution, entityID)
}

// Zone returns the zone an entity is attributed to, if any.
func (s *Set) Zone(entityID string) (string, bool) {
	z, ok := s.attribution[entityID]
	return z, ok
}

// SumsFor recomputes the aggregation for one zone from current scores.
// Always computed fresh so the sums can never drift from the oracle's
// latest values.
func (s *Set) SumsFor(zoneID string) ZoneSums {
	var out ZoneSums
	for entity, zone := range s.attribution {
		if zone != zoneID {
			continue
		}
		sc := s.scores[entity] // zero Score for unscored entities
		out.Aggregate += sc.Overall
		out.Power += sc.Power
		out.Charisma += sc.Charisma
	}
	return out
}

// ArtifactWeight maps an entity's charisma to a [0,1] discoverability
// weight. Scores above the nominal ceiling clamp to exactly 1.
func (s *Set) ArtifactWeight(entityID string, charismaNorm float64) float64 {
	sc := s.scores[entityID]
	w := sc.Charisma / charismaNorm
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// Reset drops all scores and attributions.
func (s *Set) Reset() {
	s.scores = make(map[string]Score)
	s.attribution = make(map[string]string)
}

// #endregion set
