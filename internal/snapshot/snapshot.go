// Package snapshot defines the immutable per-tick frame handed to external
// consumers, and its JSON wire shape. The lowercase enum values and the
// cloud/zones/events layout are an external compatibility contract.
package snapshot

import (
	"github.com/pinegrove/cloudcore/internal/npc"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/tier"
	"github.com/pinegrove/cloudcore/internal/zone"
)

// #region frame

// Cloud is the global pressure block of a frame.
type Cloud struct {
	Level     float64 `json:"level"`
	Mood      string  `json:"mood"`  // calm | uneasy | strained | critical
	Trend     string  `json:"trend"` // stable | rising | falling | spiking
	BleedTier int     `json:"bleed_tier"`
}

// Zone is the per-zone block of a frame.
type Zone struct {
	ID            string  `json:"id"`
	Turbulence    float64 `json:"turbulence"`
	Resonance     float64 `json:"resonance"`
	QbitAggregate float64 `json:"qbit_aggregate"`
	QbitPower     float64 `json:"qbit_power"`
	QbitCharisma  float64 `json:"qbit_charisma"`
}

// Event is one entry of a frame's event list.
type Event struct {
	Type    string  `json:"type"` // tier_changed | contradiction
	SimTime float64 `json:"sim_time"`

	// tier_changed fields
	FromTier int     `json:"from_tier,omitempty"`
	ToTier   int     `json:"to_tier,omitempty"`
	Level    float64 `json:"level,omitempty"`

	// contradiction fields
	NPCID  string `json:"npc_id,omitempty"`
	ZoneID string `json:"zone_id,omitempty"`
	Rule   string `json:"rule,omitempty"`
}

// Frame is the immutable value object assembled once per tick. It is the
// sole data handed to renderers and bridges; nothing in it aliases live
// simulation state.
type Frame struct {
	FrameID string  `json:"frame_id"`
	SimTime float64 `json:"sim_time"`
	Cloud   Cloud   `json:"cloud"`
	Zones   []Zone  `json:"zones"`
	Events  []Event `json:"events"`
}

// #endregion frame

// #region builders

const (
	EventTierChanged   = "tier_changed"
	EventContradiction = "contradiction"
)

// CloudFrom converts the internal pressure state and bleed tier.
func CloudFrom(st pressure.State, bleedTier int) Cloud {
	return Cloud{
		Level:     st.Level,
		Mood:      st.Mood.Wire(),
		Trend:     st.Trend.Wire(),
		BleedTier: bleedTier,
	}
}

// ZoneFrom copies one zone microstate into its wire block.
func ZoneFrom(z zone.Microstate) Zone {
	return Zone{
		ID:            z.ID,
		Turbulence:    z.Turbulence,
		Resonance:     z.Resonance,
		QbitAggregate: z.QbitAggregate,
		QbitPower:     z.QbitPower,
		QbitCharisma:  z.QbitCharisma,
	}
}

// TierEvent converts a tier transition.
func TierEvent(ev tier.ChangedEvent) Event {
	return Event{
		Type:     EventTierChanged,
		SimTime:  ev.SimTime,
		FromTier: ev.From,
		ToTier:   ev.To,
		Level:    ev.Level,
	}
}

// ContradictionEvent converts a recorded contradiction.
func ContradictionEvent(ev npc.ContradictionEvent) Event {
	return Event{
		Type:    EventContradiction,
		SimTime: ev.SimTime,
		NPCID:   ev.NPCID,
		ZoneID:  ev.ZoneID,
		Rule:    string(ev.Rule),
	}
}

// #endregion builders
