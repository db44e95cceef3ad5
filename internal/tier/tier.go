package tier

import (
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/tuning"
)

// #region event

// ChangedEvent records a single tier transition. One event per crossed
// threshold: a jump from 0 to 95 pressure in one tick still yields three
// events (0→1, 1→2, 2→3). This event stream is the only way the rest of the
// system observes tier changes.
type ChangedEvent struct {
	From    int
	To      int
	Level   float64
	SimTime float64
}

// #endregion event

// #region machine

// Machine tracks the discrete bleed tier (0..3) over pressure thresholds
// with hysteresis. Entry is immediate on an upward crossing during a rising
// trend; exit requires the level to stay below the tier's threshold for a
// full wind-down of simulated time. The storm fades, it doesn't vanish.
type Machine struct {
	cfg  tuning.SimulationConfig
	tier int

	// belowFor[i] accumulates simulated seconds the level has spent below
	// TierThresholds[i]. Each tier winds down on its own clock.
	belowFor [3]float64
}

// NewMachine starts at tier 0 with cleared wind-down clocks.
func NewMachine(cfg tuning.SimulationConfig) *Machine {
	return &Machine{cfg: cfg}
}

// Tier returns the current bleed tier.
func (m *Machine) Tier() int { return m.tier }

// Reset drops to tier 0 and clears all wind-down clocks. Only the explicit
// world reset may call this; normal operation exits tiers one at a time.
func (m *Machine) Reset() {
	m.tier = 0
	m.belowFor = [3]float64{}
}

// Restore reapplies a persisted tier with fresh wind-down clocks. Canon
// reload only; timers are explicitly excluded from persistence.
func (m *Machine) Restore(t int) {
	if t < 0 {
		t = 0
	}
	if t > 3 {
		t = 3
	}
	m.tier = t
	m.belowFor = [3]float64{}
}

// #endregion machine

// #region advance

// Advance runs one tick of the state machine against the freshly updated
// pressure state. Returned events are in transition order.
func (m *Machine) Advance(dt float64, st pressure.State) []ChangedEvent {
	var events []ChangedEvent

	// Wind-down clocks run independently per threshold. A fresh rise above
	// a threshold cancels that tier's wind-down outright.
	for i, thr := range m.cfg.TierThresholds {
		if st.Level < thr {
			m.belowFor[i] += dt
		} else {
			m.belowFor[i] = 0
		}
	}

	// Upward crossings: immediate, one tier per threshold, each with its
	// own event, but only while the trend is upward.
	if st.Trend == pressure.TrendRising || st.Trend == pressure.TrendSpiking {
		for m.tier < 3 && st.Level >= m.cfg.TierThresholds[m.tier] {
			ev := ChangedEvent{From: m.tier, To: m.tier + 1, Level: st.Level, SimTime: st.SimTime}
			m.tier++
			m.belowFor[m.tier-1] = 0
			events = append(events, ev)
		}
	}

	// Downward step: top-down check, at most one tier per tick, and only
	// after the full wind-down has elapsed below this tier's threshold.
	// The clocks are independent: while the level sits below several
	// thresholds at once they all accumulate, so a deep drop steps down one
	// tier per tick once the wind-down has elapsed.
	if m.tier > 0 && m.belowFor[m.tier-1] >= m.cfg.WindDownSec {
		ev := ChangedEvent{From: m.tier, To: m.tier - 1, Level: st.Level, SimTime: st.SimTime}
		m.tier--
		events = append(events, ev)
	}

	return events
}

// #endregion advance
