package oracle

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSumsForFreshRecompute(t *testing.T) {
	s := NewSet(zerolog.Nop())
	s.SetScore("a", Score{Power: 100, Charisma: 200, Overall: 300})
	s.SetScore("b", Score{Power: 50, Charisma: 10, Overall: 60})
	s.Attribute("a", "ATRIUM")
	s.Attribute("b", "ATRIUM")

	sums := s.SumsFor("ATRIUM")
	if sums.Aggregate != 360 || sums.Power != 150 || sums.Charisma != 210 {
		t.Fatalf("bad sums: %+v", sums)
	}

	// Rescoring an entity changes the next recompute immediately.
	s.SetScore("a", Score{Power: 0, Charisma: 0, Overall: 1000})
	sums = s.SumsFor("ATRIUM")
	if sums.Aggregate != 1060 {
		t.Fatalf("rescore not reflected: %+v", sums)
	}

	// Moving an entity empties its old zone's contribution.
	s.Attribute("a", "CINEMA")
	if got := s.SumsFor("ATRIUM").Aggregate; got != 60 {
		t.Fatalf("old zone kept moved entity: %f", got)
	}
	if got := s.SumsFor("CINEMA").Aggregate; got != 1000 {
		t.Fatalf("new zone missing entity: %f", got)
	}
}

func TestUnscoredEntityZeroInfluence(t *testing.T) {
	s := NewSet(zerolog.Nop())
	s.Attribute("mystery", "ATRIUM")

	sums := s.SumsFor("ATRIUM")
	if sums.Aggregate != 0 || sums.Power != 0 || sums.Charisma != 0 {
		t.Fatalf("unscored entity contributed influence: %+v", sums)
	}

	// Once the score arrives the same attribution starts counting.
	s.SetScore("mystery", Score{Overall: 500})
	if got := s.SumsFor("ATRIUM").Aggregate; got != 500 {
		t.Fatalf("late score not counted: %f", got)
	}
}

func TestDetach(t *testing.T) {
	s := NewSet(zerolog.Nop())
	s.SetScore("a", Score{Overall: 100})
	s.Attribute("a", "ATRIUM")
	s.Detach("a")

	if _, ok := s.Zone("a"); ok {
		t.Fatal("detached entity still attributed")
	}
	if got := s.SumsFor("ATRIUM").Aggregate; got != 0 {
		t.Fatalf("detached entity still counted: %f", got)
	}
}

func TestArtifactWeightClamp(t *testing.T) {
	s := NewSet(zerolog.Nop())
	s.SetScore("plain", Score{Charisma: 1500})
	s.SetScore("over", Score{Charisma: 4500})
	s.SetScore("negative", Score{Charisma: -10})

	cases := []struct {
		entity string
		want   float64
	}{
		{"plain", 0.5},
		{"over", 1.0},     // above the 3000 ceiling clamps to exactly 1
		{"negative", 0.0},
		{"unscored", 0.0},
	}
	for _, tc := range cases {
		if got := s.ArtifactWeight(tc.entity, 3000); got != tc.want {
			t.Fatalf("%s: weight %f, want %f", tc.entity, got, tc.want)
		}
	}
}
