package pressure

// #region mood

// Mood is the discrete band derived from the pressure level.
type Mood string

const (
	MoodCalm     Mood = "CALM"
	MoodTension  Mood = "TENSION"
	MoodSurge    Mood = "SURGE"
	MoodCritical Mood = "CRITICAL"
)

// Wire returns the externally documented lowercase name for the mood.
// The bridge contract fixes these four strings; changing them is a
// compatibility break, not a refactor.
func (m Mood) Wire() string {
	switch m {
	case MoodCalm:
		return "calm"
	case MoodTension:
		return "uneasy"
	case MoodSurge:
		return "strained"
	case MoodCritical:
		return "critical"
	}
	return "calm"
}

// #endregion mood

// #region trend

// Trend classifies the most recent tick's delta.
type Trend string

const (
	TrendStable  Trend = "STABLE"
	TrendRising  Trend = "RISING"
	TrendFalling Trend = "FALLING"
	TrendSpiking Trend = "SPIKING"
)

// Wire returns the externally documented lowercase name for the trend.
func (t Trend) Wire() string {
	switch t {
	case TrendStable:
		return "stable"
	case TrendRising:
		return "rising"
	case TrendFalling:
		return "falling"
	case TrendSpiking:
		return "spiking"
	}
	return "stable"
}

// #endregion trend

// #region action

// ActionKind enumerates the player actions the engine prices.
type ActionKind string

const (
	ActionNone                 ActionKind = "none"
	ActionEnterQuietZone       ActionKind = "enter_quiet_zone"
	ActionWitnessContradiction ActionKind = "witness_contradiction"
	ActionLingerBleedZone      ActionKind = "linger_bleed_zone"
	ActionDiscovery            ActionKind = "discovery"
)

// PlayerEvent is the player-side input for one tick. Zone names the zone the
// action occurred in; it also drives the entity-influence sub-delta.
type PlayerEvent struct {
	Action ActionKind
	Zone   string
	Entity string // optional, discovery events may name the found artifact
}

// NPCEvent is one NPC-side pressure contribution for the tick. Delta is
// priced by the emitting layer; the engine only weights and sums.
type NPCEvent struct {
	Kind  string
	Zone  string
	Delta float64
}

// #endregion action

// #region state

// State is the single global pressure record. Exactly one exists per world;
// only the engine writes Level.
type State struct {
	Level     float64
	Mood      Mood
	Trend     Trend
	LastDelta float64
	SimTime   float64 // accumulated simulated seconds since world start
}

// NewState returns the cold-start state: zero pressure, calm, stable.
func NewState() State {
	return State{Level: 0, Mood: MoodCalm, Trend: TrendStable}
}

// #endregion state

// #region breakdown

// Breakdown reports the weighted sub-deltas from one update, for logging
// and replay inspection.
type Breakdown struct {
	Player  float64
	NPC     float64
	Entity  float64
	Ambient float64
	Total   float64
}

// #endregion breakdown
