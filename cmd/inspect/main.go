// inspect prints the contents of a canon database: the version chain and
// the durable event log. Useful when diagnosing a resumed session that came
// back with the wrong pressure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pinegrove/cloudcore/internal/canon"
)

// #region main

func main() {
	dbPath := flag.String("db", "canon.db", "canon database path")
	last := flag.Int("last", 20, "number of versions/events to show")
	asJSON := flag.Bool("json", false, "emit machine-readable JSON")
	eventsOnly := flag.Bool("events", false, "show the event log only")
	flag.Parse()

	store, err := canon.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := run(store, *last, *asJSON, *eventsOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(store *canon.Store, last int, asJSON, eventsOnly bool) error {
	events, err := store.ListEvents(last)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	var versions []canon.Record
	if !eventsOnly {
		versions, err = store.ListVersions(last)
		if err != nil {
			return fmt.Errorf("list versions: %w", err)
		}
	}

	if asJSON {
		out := map[string]interface{}{"events": events}
		if !eventsOnly {
			out["versions"] = versions
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if !eventsOnly {
		printVersions(versions)
		fmt.Println()
	}
	printEvents(events)
	return nil
}

// #endregion main

// #region printers

func printVersions(versions []canon.Record) {
	fmt.Printf("canon versions (%d):\n", len(versions))
	for _, v := range versions {
		parent := v.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Printf("  %s  parent=%s  level=%.2f  tier=%d  sim_time=%.1fs  zones=%d  contradicted=%d  %s\n",
			v.VersionID, parent, v.Level, v.BleedTier, v.SimTime,
			len(v.Resonance), countUsed(v.Used), v.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printEvents(events []canon.EventEntry) {
	fmt.Printf("event log (%d):\n", len(events))
	for _, e := range events {
		fmt.Printf("  [%s] t=%.1fs", e.EventType, e.SimTime)
		if e.NPCID != "" {
			fmt.Printf("  npc=%s", e.NPCID)
		}
		if e.ZoneID != "" {
			fmt.Printf("  zone=%s", e.ZoneID)
		}
		if e.Detail != "" {
			fmt.Printf("  %s", e.Detail)
		}
		fmt.Println()
	}
}

func countUsed(used map[string]bool) int {
	n := 0
	for _, v := range used {
		if v {
			n++
		}
	}
	return n
}

// #endregion printers
