package tuning

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// #region simulation-config

// SimulationConfig consolidates every tunable constant in the simulation
// core. It is immutable after construction: the orchestrator takes a copy at
// world creation and never reads the original again.
type SimulationConfig struct {
	// Pressure delta weights. Must sum to 1.0.
	PlayerWeight  float64 `yaml:"player_weight" json:"player_weight"`
	NPCWeight     float64 `yaml:"npc_weight" json:"npc_weight"`
	EntityWeight  float64 `yaml:"entity_weight" json:"entity_weight"`
	AmbientWeight float64 `yaml:"ambient_weight" json:"ambient_weight"`

	// Player action base deltas.
	DeltaEnterQuietZone       float64 `yaml:"delta_enter_quiet_zone" json:"delta_enter_quiet_zone"`
	DeltaWitnessContradiction float64 `yaml:"delta_witness_contradiction" json:"delta_witness_contradiction"`
	DeltaLingerBleedPerSec    float64 `yaml:"delta_linger_bleed_per_sec" json:"delta_linger_bleed_per_sec"`
	DeltaDiscovery            float64 `yaml:"delta_discovery" json:"delta_discovery"`

	// Entity influence contribution.
	EntityScale    float64 `yaml:"entity_scale" json:"entity_scale"`         // per point of zone qbit aggregate
	EntityDeltaCap float64 `yaml:"entity_delta_cap" json:"entity_delta_cap"` // per-tick ceiling

	// Ambient drift.
	DriftAmplitude  float64 `yaml:"drift_amplitude" json:"drift_amplitude"`
	DriftPeriodSec  float64 `yaml:"drift_period_sec" json:"drift_period_sec"`
	JitterAmplitude float64 `yaml:"jitter_amplitude" json:"jitter_amplitude"`
	FatigueAfterSec float64 `yaml:"fatigue_after_sec" json:"fatigue_after_sec"` // session length before fatigue ramps
	FatigueRate     float64 `yaml:"fatigue_rate" json:"fatigue_rate"`           // extra drift per second past the ramp

	// Trend classification.
	SpikeThreshold float64 `yaml:"spike_threshold" json:"spike_threshold"`
	TrendDeadband  float64 `yaml:"trend_deadband" json:"trend_deadband"`

	// Bleed tier thresholds (entry for tiers 1..3) and wind-down.
	TierThresholds [3]float64 `yaml:"tier_thresholds" json:"tier_thresholds"`
	WindDownSec    float64    `yaml:"wind_down_sec" json:"wind_down_sec"`

	// Zone microstate dynamics.
	TurbulenceScale    float64 `yaml:"turbulence_scale" json:"turbulence_scale"`
	TurbulenceApproach float64 `yaml:"turbulence_approach" json:"turbulence_approach"` // rate toward target in occupied zone
	TurbulenceDecay    float64 `yaml:"turbulence_decay" json:"turbulence_decay"`    // rate toward baseline elsewhere
	ResonanceIncrement float64 `yaml:"resonance_increment" json:"resonance_increment"`
	ResonanceModifier  float64 `yaml:"resonance_modifier" json:"resonance_modifier"`
	CharismaNorm       float64 `yaml:"charisma_norm" json:"charisma_norm"` // nominal charisma ceiling (artifact weights)
	ZoneCooldownSec    float64 `yaml:"zone_cooldown_sec" json:"zone_cooldown_sec"`

	// Contradiction gate.
	ContradictionBase float64 `yaml:"contradiction_base" json:"contradiction_base"`

	// Timestep acceptance window.
	MaxTimestepSec float64 `yaml:"max_timestep_sec" json:"max_timestep_sec"`

	// Drift jitter seed. Worlds built from the same config replay identically.
	Seed int64 `yaml:"seed" json:"seed"`

	// Strict turns internal invariant violations into panics instead of
	// silent clamps. Test builds set this; production leaves it off.
	Strict bool `yaml:"strict" json:"strict"`
}

// #endregion simulation-config

// #region defaults

// Default returns the documented default constants.
func Default() SimulationConfig {
	return SimulationConfig{
		PlayerWeight:  0.50,
		NPCWeight:     0.25,
		EntityWeight:  0.15,
		AmbientWeight: 0.10,

		DeltaEnterQuietZone:       0.5,
		DeltaWitnessContradiction: 2.0,
		DeltaLingerBleedPerSec:    0.3,
		DeltaDiscovery:            0.8,

		EntityScale:    0.0002,
		EntityDeltaCap: 1.2,

		DriftAmplitude:  0.05,
		DriftPeriodSec:  600,
		JitterAmplitude: 0.02,
		FatigueAfterSec: 1800,
		FatigueRate:     0.00005,

		SpikeThreshold: 5.0,
		TrendDeadband:  0.05,

		TierThresholds: [3]float64{75, 80, 90},
		WindDownSec:    8,

		TurbulenceScale:    0.001,
		TurbulenceApproach: 1.5,
		TurbulenceDecay:    0.4,
		ResonanceIncrement: 1.0,
		ResonanceModifier:  0.5,
		CharismaNorm:       3000,
		ZoneCooldownSec:    30,

		ContradictionBase: 75,

		MaxTimestepSec: 10,

		Seed: 1,
	}
}

// #endregion defaults

// #region loader

// Load reads a YAML tuning file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (SimulationConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("tuning yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// #endregion loader

// #region validate

// Validate rejects configs that would break the numeric contracts.
func (c SimulationConfig) Validate() error {
	sum := c.PlayerWeight + c.NPCWeight + c.EntityWeight + c.AmbientWeight
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("pressure weights sum to %.6f, want 1.0", sum)
	}
	if !(c.TierThresholds[0] < c.TierThresholds[1] && c.TierThresholds[1] < c.TierThresholds[2]) {
		return fmt.Errorf("tier thresholds must be strictly increasing, got %v", c.TierThresholds)
	}
	if c.MaxTimestepSec <= 0 {
		return fmt.Errorf("max timestep must be positive, got %.3f", c.MaxTimestepSec)
	}
	if c.WindDownSec <= 0 {
		return fmt.Errorf("wind-down must be positive, got %.3f", c.WindDownSec)
	}
	if c.ZoneCooldownSec < 0 {
		return fmt.Errorf("zone cooldown must be non-negative, got %.3f", c.ZoneCooldownSec)
	}
	if c.CharismaNorm <= 0 {
		return fmt.Errorf("charisma norm must be positive, got %.3f", c.CharismaNorm)
	}
	return nil
}

// #endregion validate
