package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pinegrove/cloudcore/internal/replay"
	"github.com/pinegrove/cloudcore/internal/snapshot"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	archivePath := flag.String("archive", "", "optional: write resulting frames as zstd JSONL")
	verbose := flag.Bool("v", false, "print per-tick results")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--archive out.jsonl.zst] [-v]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *archivePath, *verbose))
}

// #endregion main

// #region run

func run(fixturePath, archivePath string, verbose bool) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	results, sum, err := replay.Run(f, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
		return 1
	}

	if verbose {
		for _, r := range results {
			fmt.Printf("tick %3d  t=%8.2fs  level=%6.2f  mood=%-9s trend=%-8s tier=%d  events=%d\n",
				r.Tick, r.Frame.SimTime, r.Frame.Cloud.Level, r.Frame.Cloud.Mood,
				r.Frame.Cloud.Trend, r.Frame.Cloud.BleedTier, len(r.Frame.Events))
			for _, cr := range r.Contradictions {
				status := "allowed"
				if !cr.Allowed {
					status = "refused: " + cr.Reason
				}
				fmt.Printf("          contradiction %s/%s %s\n", cr.NPCID, cr.Rule, status)
			}
		}
	}

	fmt.Printf("\n%s\n", f.Description)
	fmt.Printf("ticks=%d peak=%.2f final=%.2f tier=%d tier_changes=%d contradictions=%d refused=%d\n",
		sum.TotalTicks, sum.PeakLevel, sum.FinalLevel, sum.FinalTier,
		sum.TierChanges, sum.Contradictions, sum.Rejected)

	if archivePath != "" {
		frames := make([]snapshot.Frame, 0, len(results))
		for _, r := range results {
			frames = append(frames, r.Frame)
		}
		if err := snapshot.WriteArchive(archivePath, frames); err != nil {
			fmt.Fprintf(os.Stderr, "archive write failed: %v\n", err)
			return 1
		}
		fmt.Printf("frames archived to %s\n", archivePath)
	}

	failures := replay.Verify(f, results)
	if len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d expectation(s) failed:\n", len(failures))
		for _, msg := range failures {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
		return 1
	}
	if len(f.Expected) > 0 {
		fmt.Printf("all %d expectations passed\n", len(f.Expected))
	}
	return 0
}

// #endregion run
