package canon

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "canon.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadActive(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save(Record{
		Level:     62.5,
		BleedTier: 1,
		SimTime:   480,
		Resonance: map[string]float64{"CINEMA": 12.5, "ATRIUM": 0},
		Used:      map[string]bool{"gregor_kiosk": true},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.VersionID == "" {
		t.Fatal("save did not assign a version id")
	}
	if saved.ParentID != "" {
		t.Fatalf("first save should have no parent, got %q", saved.ParentID)
	}

	got, err := s.LoadActive()
	if err != nil {
		t.Fatalf("load active: %v", err)
	}
	if got.VersionID != saved.VersionID || got.Level != 62.5 || got.BleedTier != 1 || got.SimTime != 480 {
		t.Fatalf("bad record: %+v", got)
	}
	if got.Resonance["CINEMA"] != 12.5 {
		t.Fatalf("resonance lost: %+v", got.Resonance)
	}
	if !got.Used["gregor_kiosk"] {
		t.Fatalf("contradiction flag lost: %+v", got.Used)
	}
}

func TestSaveChainsParent(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Save(Record{Level: 10})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := s.Save(Record{Level: 20})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ParentID != first.VersionID {
		t.Fatalf("parent %q, want %q", second.ParentID, first.VersionID)
	}

	// Active pointer follows the latest save.
	active, err := s.LoadActive()
	if err != nil {
		t.Fatalf("load active: %v", err)
	}
	if active.VersionID != second.VersionID {
		t.Fatalf("active %q, want %q", active.VersionID, second.VersionID)
	}

	// Older versions stay loadable by id.
	old, err := s.LoadVersion(first.VersionID)
	if err != nil {
		t.Fatalf("load version: %v", err)
	}
	if old.Level != 10 {
		t.Fatalf("old version level %f", old.Level)
	}
}

func TestLoadActiveEmpty(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadActive(); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListVersionsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Save(Record{Level: float64(i)}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	recs, err := s.ListVersions(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d versions, want 3", len(recs))
	}
	// Each record's parent is the one listed after it.
	for i := 0; i < len(recs)-1; i++ {
		if recs[i].ParentID != recs[i+1].VersionID {
			t.Fatalf("chain broken at %d: parent %q, next %q", i, recs[i].ParentID, recs[i+1].VersionID)
		}
	}
}

func TestEventLog(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.Save(Record{Level: 80, BleedTier: 2})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	entries := []EventEntry{
		{VersionID: rec.VersionID, EventType: "tier_changed", Detail: "1->2", SimTime: 300},
		{VersionID: rec.VersionID, EventType: "contradiction", NPCID: "gregor_kiosk", ZoneID: "SERVICE_HALL", SimTime: 310},
	}
	for _, e := range entries {
		if err := s.LogEvent(e); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	got, err := s.ListEvents(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	// Newest first.
	if got[0].EventType != "contradiction" || got[0].NPCID != "gregor_kiosk" {
		t.Fatalf("bad newest event: %+v", got[0])
	}
	if got[1].EventType != "tier_changed" || got[1].Detail != "1->2" {
		t.Fatalf("bad oldest event: %+v", got[1])
	}
}
