package replay

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pinegrove/cloudcore/internal/tuning"
	"github.com/pinegrove/cloudcore/internal/zone"
)

func rampFixture() *Fixture {
	cfg := tuning.Default()
	f := &Fixture{
		Description: "incident ramp with a contradiction",
		Config:      &cfg,
		Entities: []FixtureEntity{
			{ID: "relic", Zone: zone.ServiceHall, Power: 800, Charisma: 2400, Overall: 3200},
		},
	}
	for i := 0; i < 60; i++ {
		tk := FixtureTick{Dt: 1}
		if i >= 5 && i < 45 {
			tk.Player = &FixturePlayer{Action: "linger_bleed_zone", Zone: zone.ServiceHall}
			tk.NPCEvents = []FixtureNPCEvent{{Kind: "incident", Zone: zone.ServiceHall, Delta: 8}}
		}
		if i == 46 {
			tk.Contradictions = []FixtureContradiction{
				{NPCID: "gregor_kiosk", Rule: "never_open_service_door"},
			}
		}
		f.Ticks = append(f.Ticks, tk)
	}
	return f
}

func TestRunDeterministic(t *testing.T) {
	f := rampFixture()

	r1, s1, err := Run(f, zerolog.Nop())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	r2, s2, err := Run(f, zerolog.Nop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if s1 != s2 {
		t.Fatalf("summaries diverged: %+v vs %+v", s1, s2)
	}
	if len(r1) != len(r2) {
		t.Fatalf("result lengths differ: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		a, b := r1[i].Frame, r2[i].Frame
		a.FrameID, b.FrameID = "", ""
		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		if string(ja) != string(jb) {
			t.Fatalf("tick %d diverged:\n%s\n%s", i, ja, jb)
		}
	}
}

func TestRunRampReachesBleed(t *testing.T) {
	f := rampFixture()
	results, sum, err := Run(f, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if sum.PeakLevel < 75 {
		t.Fatalf("ramp never reached bleed territory: peak %.2f", sum.PeakLevel)
	}
	if sum.TierChanges == 0 {
		t.Fatal("ramp produced no tier changes")
	}
	if sum.Contradictions != 1 || sum.Rejected != 0 {
		t.Fatalf("expected one allowed contradiction, got %+v", sum)
	}

	// The attempt landed on tick 46 and the gate said yes.
	cr := results[46].Contradictions
	if len(cr) != 1 || !cr[0].Allowed {
		t.Fatalf("bad contradiction result: %+v", cr)
	}
}

func TestVerifyPinsResults(t *testing.T) {
	f := rampFixture()
	results, _, err := Run(f, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Expectations drawn from the run itself must verify clean.
	tier := results[59].Frame.Cloud.BleedTier
	f.Expected = []FixtureExpectation{
		{Tick: 0, Level: results[0].Frame.Cloud.Level, Mood: results[0].Frame.Cloud.Mood},
		{Tick: 59, Level: results[59].Frame.Cloud.Level, BleedTier: &tier},
	}
	if failures := Verify(f, results); len(failures) != 0 {
		t.Fatalf("self-derived expectations failed: %v", failures)
	}

	// A wrong level is reported.
	f.Expected[1].Level += 5
	if failures := Verify(f, results); len(failures) != 1 {
		t.Fatalf("expected one failure, got %v", failures)
	}

	// Out-of-range expectation is reported, not panicked on.
	f.Expected = []FixtureExpectation{{Tick: 500}}
	if failures := Verify(f, results); len(failures) != 1 {
		t.Fatalf("expected range failure, got %v", failures)
	}
}

func TestFixtureRoundTrip(t *testing.T) {
	f := rampFixture()
	path := filepath.Join(t.TempDir(), "ramp.json")
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// The reloaded fixture replays to the same summary.
	_, s1, err := Run(f, zerolog.Nop())
	if err != nil {
		t.Fatalf("run original: %v", err)
	}
	_, s2, err := Run(loaded, zerolog.Nop())
	if err != nil {
		t.Fatalf("run loaded: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("reloaded fixture diverged: %+v vs %+v", s1, s2)
	}
}

func TestRunCustomSpines(t *testing.T) {
	cfg := tuning.Default()
	f := &Fixture{
		Config: &cfg,
		Spines: []FixtureSpine{
			{ID: "night_watch", HomeZone: zone.ParkingDeck, Power: 2200,
				Rules: []string{"never_acknowledge_cloud"}},
		},
		Ticks: []FixtureTick{
			{Dt: 1, Contradictions: []FixtureContradiction{
				{NPCID: "night_watch", Rule: "never_acknowledge_cloud"},
			}},
		},
	}

	results, sum, err := Run(f, zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Pressure is near zero, so the gate refuses.
	if sum.Rejected != 1 || sum.Contradictions != 0 {
		t.Fatalf("expected one rejection, got %+v", sum)
	}
	if results[0].Contradictions[0].Reason == "" {
		t.Fatal("rejection carried no reason")
	}
}
