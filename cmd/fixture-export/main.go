// fixture-export runs a scripted pressure-ramp session and writes it out
// as a replay fixture with expectations filled from the actual run. The
// output is a golden file: replays of it must reproduce these numbers.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pinegrove/cloudcore/internal/replay"
	"github.com/pinegrove/cloudcore/internal/tuning"
	"github.com/pinegrove/cloudcore/internal/zone"
)

// #region main

func main() {
	out := flag.String("out", "fixture.json", "output fixture path")
	ticks := flag.Int("ticks", 120, "number of ticks to script")
	dt := flag.Float64("dt", 0.25, "timestep per tick in simulated seconds")
	flag.Parse()

	f := buildScript(*ticks, *dt)

	// Run once to pin expectations.
	results, sum, err := replay.Run(f, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "scripted run failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range results {
		if r.Tick%20 != 0 && r.Tick != len(results)-1 {
			continue
		}
		tier := r.Frame.Cloud.BleedTier
		f.Expected = append(f.Expected, replay.FixtureExpectation{
			Tick:      r.Tick,
			Level:     r.Frame.Cloud.Level,
			Tolerance: 1e-9,
			Mood:      r.Frame.Cloud.Mood,
			BleedTier: &tier,
		})
	}

	if err := replay.SaveFixture(*out, f); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %d ticks, peak=%.2f, tier_changes=%d\n",
		*out, sum.TotalTicks, sum.PeakLevel, sum.TierChanges)
}

// #endregion main

// #region script

// buildScript produces a session that walks the interesting paths: quiet
// exploration, a discovery, an NPC incident ramp, and a long cool-down.
func buildScript(ticks int, dt float64) *replay.Fixture {
	cfg := tuning.Default()
	f := &replay.Fixture{
		Description: fmt.Sprintf("scripted ramp session, %d ticks at dt=%.2f", ticks, dt),
		Config:      &cfg,
		Entities: []replay.FixtureEntity{
			{ID: "vending-shrine", Zone: zone.ServiceHall, Power: 2100, Charisma: 2600, Overall: 4700},
			{ID: "fountain-coin-hoard", Zone: zone.FountainCourt, Power: 300, Charisma: 900, Overall: 1200},
		},
	}

	for i := 0; i < ticks; i++ {
		tk := replay.FixtureTick{Dt: dt}
		switch {
		case i == 10:
			tk.Player = &replay.FixturePlayer{Action: "enter_quiet_zone", Zone: zone.ServiceHall}
		case i == 20:
			tk.Player = &replay.FixturePlayer{Action: "discovery", Zone: zone.ServiceHall, Entity: "vending-shrine"}
		case i > 30 && i <= 60:
			// NPC incident ramp pushes pressure into bleed territory.
			tk.Player = &replay.FixturePlayer{Action: "linger_bleed_zone", Zone: zone.ServiceHall}
			tk.NPCEvents = []replay.FixtureNPCEvent{
				{Kind: "incident", Zone: zone.ServiceHall, Delta: 6.0},
			}
		case i == 61:
			tk.Contradictions = []replay.FixtureContradiction{
				{NPCID: "gregor_kiosk", Rule: "never_open_service_door"},
			}
		}
		f.Ticks = append(f.Ticks, tk)
	}
	return f
}

// #endregion script
