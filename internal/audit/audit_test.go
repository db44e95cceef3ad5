package audit

import (
	"testing"

	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/zone"
)

func TestRunPassesCleanState(t *testing.T) {
	h := NewHarness(false)
	st := pressure.State{Level: 42}
	tier := 1
	zones := []*zone.Microstate{{ID: "ATRIUM", Turbulence: 0.2, Resonance: 3}}

	res := h.Run(&st, &tier, zones)
	if !res.Passed {
		t.Fatalf("clean state failed audit: %s", res.Reason)
	}
	if st.Level != 42 || tier != 1 {
		t.Fatal("audit mutated clean state")
	}
}

func TestRunClampsOutOfRange(t *testing.T) {
	h := NewHarness(false)
	st := pressure.State{Level: 130}
	tier := 5
	zones := []*zone.Microstate{{ID: "ATRIUM", Turbulence: -0.5}}

	res := h.Run(&st, &tier, zones)
	if res.Passed {
		t.Fatal("violations reported as passed")
	}
	if st.Level != 100 {
		t.Fatalf("level not clamped: %f", st.Level)
	}
	if tier != 3 {
		t.Fatalf("tier not clamped: %d", tier)
	}
	if zones[0].Turbulence != 0 {
		t.Fatalf("turbulence not clamped: %f", zones[0].Turbulence)
	}
}

func TestRunCatchesResonanceRegression(t *testing.T) {
	h := NewHarness(false)
	st := pressure.State{Level: 10}
	tier := 0
	z := &zone.Microstate{ID: "CINEMA", Turbulence: 0.1, Resonance: 5}

	if res := h.Run(&st, &tier, []*zone.Microstate{z}); !res.Passed {
		t.Fatalf("baseline run failed: %s", res.Reason)
	}

	z.Resonance = 3 // accumulator ran backward
	res := h.Run(&st, &tier, []*zone.Microstate{z})
	if res.Passed {
		t.Fatal("resonance regression not caught")
	}
	if z.Resonance != 5 {
		t.Fatalf("resonance not restored to high-water mark: %f", z.Resonance)
	}

	// After ResetBaseline a lower value is a fresh start, not a regression.
	h.ResetBaseline()
	z.Resonance = 0
	if res := h.Run(&st, &tier, []*zone.Microstate{z}); !res.Passed {
		t.Fatalf("reset baseline still failing: %s", res.Reason)
	}
}

func TestStrictModePanics(t *testing.T) {
	h := NewHarness(true)
	st := pressure.State{Level: -1}
	tier := 0

	defer func() {
		if recover() == nil {
			t.Fatal("strict harness did not panic on violation")
		}
	}()
	h.Run(&st, &tier, nil)
}
