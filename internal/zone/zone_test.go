package zone

import (
	"errors"
	"math"
	"testing"

	"github.com/pinegrove/cloudcore/internal/oracle"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/tuning"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(tuning.Default(), DefaultZones())
}

func TestUpdateRejectsUnknownZone(t *testing.T) {
	s := newStore(t)
	ev := pressure.PlayerEvent{Action: pressure.ActionEnterQuietZone, Zone: "SKY_BRIDGE"}
	err := s.Update(0.25, &ev)
	if !errors.Is(err, ErrUnknownZone) {
		t.Fatalf("expected ErrUnknownZone, got %v", err)
	}

	// The rejected tick must not have touched any zone.
	for _, z := range s.Live() {
		if z.Turbulence != z.BaselineTurbulence {
			t.Fatalf("zone %s mutated on rejected update", z.ID)
		}
	}
}

func TestTurbulenceApproachesAggregate(t *testing.T) {
	cfg := tuning.Default()
	s := NewStore(cfg, DefaultZones())
	if err := s.ApplySums(Atrium, oracle.ZoneSums{Aggregate: 5000, Power: 3000, Charisma: 2000}); err != nil {
		t.Fatalf("apply sums: %v", err)
	}

	ev := pressure.PlayerEvent{Action: pressure.ActionNone, Zone: Atrium}
	target := 0.10 + 5000*cfg.TurbulenceScale
	prev := 0.10
	for i := 0; i < 50; i++ {
		if err := s.Update(0.5, &ev); err != nil {
			t.Fatalf("update: %v", err)
		}
		z, _ := s.Get(Atrium)
		if z.Turbulence < prev {
			t.Fatalf("turbulence moved away from target at tick %d", i)
		}
		prev = z.Turbulence
	}
	z, _ := s.Get(Atrium)
	if math.Abs(z.Turbulence-target) > 0.01 {
		t.Fatalf("turbulence %f did not converge to %f", z.Turbulence, target)
	}
}

func TestTurbulenceDecaysToBaseline(t *testing.T) {
	s := newStore(t)
	// Pump the service hall, then move the player away and watch it settle.
	s.ApplySums(ServiceHall, oracle.ZoneSums{Aggregate: 8000})
	ev := pressure.PlayerEvent{Zone: ServiceHall}
	for i := 0; i < 40; i++ {
		s.Update(0.5, &ev)
	}
	away := pressure.PlayerEvent{Zone: Atrium}
	for i := 0; i < 200; i++ {
		s.Update(0.5, &away)
	}
	z, _ := s.Get(ServiceHall)
	if math.Abs(z.Turbulence-z.BaselineTurbulence) > 0.01 {
		t.Fatalf("turbulence %f did not decay to baseline %f", z.Turbulence, z.BaselineTurbulence)
	}
}

func TestResonanceMonotone(t *testing.T) {
	s := newStore(t)
	disc := pressure.PlayerEvent{Action: pressure.ActionDiscovery, Zone: Cinema}
	idle := pressure.PlayerEvent{Zone: Cinema}

	prev := 0.0
	for i := 0; i < 30; i++ {
		ev := &idle
		if i%5 == 0 {
			ev = &disc
		}
		if err := s.Update(0.25, ev); err != nil {
			t.Fatalf("update: %v", err)
		}
		z, _ := s.Get(Cinema)
		if z.Resonance < prev {
			t.Fatalf("resonance decreased at tick %d: %f < %f", i, z.Resonance, prev)
		}
		prev = z.Resonance
	}
	if prev == 0 {
		t.Fatal("discoveries produced no resonance")
	}
}

func TestResonanceCharismaAmplification(t *testing.T) {
	cfg := tuning.Default()
	plain := NewStore(cfg, DefaultZones())
	charged := NewStore(cfg, DefaultZones())
	charged.ApplySums(FCArcade, oracle.ZoneSums{Charisma: 3000})

	disc := pressure.PlayerEvent{Action: pressure.ActionDiscovery, Zone: FCArcade}
	plain.Update(0.25, &disc)
	charged.Update(0.25, &disc)

	zp, _ := plain.Get(FCArcade)
	zc, _ := charged.Get(FCArcade)
	if zc.Resonance <= zp.Resonance {
		t.Fatalf("charisma did not amplify resonance: %f vs %f", zc.Resonance, zp.Resonance)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := newStore(t)
	s.ApplySums(Atrium, oracle.ZoneSums{Aggregate: 100, Power: 50, Charisma: 50})
	s.MarkContradiction(Atrium, 42)
	disc := pressure.PlayerEvent{Action: pressure.ActionDiscovery, Zone: Atrium}
	s.Update(0.25, &disc)

	s.Reset()
	z, _ := s.Get(Atrium)
	if z.Resonance != 0 || z.QbitAggregate != 0 || z.LastContradictionTime != -1 {
		t.Fatalf("reset left state behind: %+v", z)
	}
	if z.Turbulence != z.BaselineTurbulence {
		t.Fatalf("turbulence %f not at baseline after reset", z.Turbulence)
	}
}

func TestRestoreResonanceClampsNegative(t *testing.T) {
	s := newStore(t)
	if err := s.RestoreResonance(Cinema, -5); err != nil {
		t.Fatalf("restore: %v", err)
	}
	z, _ := s.Get(Cinema)
	if z.Resonance != 0 {
		t.Fatalf("negative resonance survived restore: %f", z.Resonance)
	}
	if err := s.RestoreResonance("NOWHERE", 1); !errors.Is(err, ErrUnknownZone) {
		t.Fatalf("expected ErrUnknownZone, got %v", err)
	}
}
