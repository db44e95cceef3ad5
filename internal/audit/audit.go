// Package audit runs lightweight post-tick validation on simulation state.
// A violation here means a programming error upstream, not bad input: in
// strict mode it panics, otherwise the value is clamped and the tick goes
// on.
package audit

import (
	"fmt"

	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/zone"
)

// #region harness

// Metric captures a single validation check result.
type Metric struct {
	Name  string
	Value float64
	Pass  bool
}

// Result is the output of one post-tick audit.
type Result struct {
	Passed  bool
	Metrics []Metric
	Reason  string
}

// Harness checks invariants after each tick. It remembers the previous
// resonance per zone to verify the accumulator never runs backward.
type Harness struct {
	strict        bool
	lastResonance map[string]float64
}

// NewHarness creates an audit harness. strict turns violations into panics.
func NewHarness(strict bool) *Harness {
	return &Harness{
		strict:        strict,
		lastResonance: make(map[string]float64),
	}
}

// ResetBaseline forgets remembered resonance values. World reset only.
func (h *Harness) ResetBaseline() {
	h.lastResonance = make(map[string]float64)
}

// #endregion harness

// #region run

// Run validates the freshly updated state. In non-strict mode out-of-range
// values are clamped in place and the result still reports the violation.
func (h *Harness) Run(st *pressure.State, bleedTier *int, zones []*zone.Microstate) Result {
	var metrics []Metric
	passed := true
	var failReasons []string

	fail := func(name string, value float64, reason string) {
		metrics = append(metrics, Metric{Name: name, Value: value, Pass: false})
		passed = false
		failReasons = append(failReasons, reason)
	}
	pass := func(name string, value float64) {
		metrics = append(metrics, Metric{Name: name, Value: value, Pass: true})
	}

	// 1. Pressure level bounds.
	if st.Level < 0 || st.Level > 100 {
		fail("pressure_level", st.Level, fmt.Sprintf("level %.4f outside [0,100]", st.Level))
		if st.Level < 0 {
			st.Level = 0
		} else {
			st.Level = 100
		}
	} else {
		pass("pressure_level", st.Level)
	}

	// 2. Bleed tier bounds.
	if *bleedTier < 0 || *bleedTier > 3 {
		fail("bleed_tier", float64(*bleedTier), fmt.Sprintf("tier %d outside [0,3]", *bleedTier))
		if *bleedTier < 0 {
			*bleedTier = 0
		} else {
			*bleedTier = 3
		}
	} else {
		pass("bleed_tier", float64(*bleedTier))
	}

	// 3. Zone bounds and resonance monotonicity.
	for _, z := range zones {
		if z.Turbulence < 0 {
			fail("turbulence_"+z.ID, z.Turbulence, fmt.Sprintf("zone %s turbulence %.4f negative", z.ID, z.Turbulence))
			z.Turbulence = 0
		}
		if prev, ok := h.lastResonance[z.ID]; ok && z.Resonance < prev {
			fail("resonance_"+z.ID, z.Resonance, fmt.Sprintf("zone %s resonance fell %.4f → %.4f", z.ID, prev, z.Resonance))
			z.Resonance = prev
		}
		h.lastResonance[z.ID] = z.Resonance
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("audit failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("audit failed: %d checks: %s", len(failReasons), failReasons[0])
		}
		if h.strict {
			panic(reason)
		}
	}

	return Result{Passed: passed, Metrics: metrics, Reason: reason}
}

// #endregion run
