package npc

// #region rule-id

// RuleID identifies a declared "never rule": a behavioral constraint an NPC
// normally cannot violate. The core only compares set membership; what the
// rule means in dialogue belongs to the narration layer.
type RuleID string

const (
	RuleNeverEnterArcade      RuleID = "never_enter_arcade"
	RuleNeverLeaveHomeZone    RuleID = "never_leave_home_zone"
	RuleNeverSpeakFirst       RuleID = "never_speak_first"
	RuleNeverAcknowledgeCloud RuleID = "never_acknowledge_cloud"
	RuleNeverCrossAtrium      RuleID = "never_cross_atrium"
	RuleNeverOpenServiceDoor  RuleID = "never_open_service_door"
	RuleNeverMentionClosure   RuleID = "never_mention_closure"
)

// KnownRule reports whether the identifier is part of the closed rule set.
func KnownRule(r RuleID) bool {
	switch r {
	case RuleNeverEnterArcade, RuleNeverLeaveHomeZone, RuleNeverSpeakFirst,
		RuleNeverAcknowledgeCloud, RuleNeverCrossAtrium,
		RuleNeverOpenServiceDoor, RuleNeverMentionClosure:
		return true
	}
	return false
}

// #endregion rule-id

// #region spine

// Spine is the per-NPC structural record tracked by the gate.
type Spine struct {
	ID       string
	HomeZone string
	Power    float64 // structural influence, from the external oracle
	Rules    map[RuleID]bool

	// ContradictionUsed is the once-per-session flag. Set by the gate on
	// RecordContradiction, cleared only by explicit world reset.
	ContradictionUsed bool
}

// HasRule reports whether the spine declares the given never rule.
func (s *Spine) HasRule(r RuleID) bool {
	return s.Rules[r]
}

// #endregion spine

// #region event

// ContradictionEvent records one permitted rule violation for the tick
// snapshot's event list. The narration layer chose the rule; the gate only
// verified eligibility.
type ContradictionEvent struct {
	NPCID   string
	ZoneID  string
	Rule    RuleID
	SimTime float64
}

// #endregion event

// #region decision

// DenialReason categorizes why the gate said no.
type DenialReason string

const (
	DenialNone          DenialReason = ""
	DenialAlreadyUsed   DenialReason = "contradiction_already_used"
	DenialZoneCooldown  DenialReason = "zone_cooldown_active"
	DenialBelowPressure DenialReason = "pressure_below_threshold"
)

// Decision is the gate's answer for one NPC this tick.
type Decision struct {
	Allowed   bool
	Reason    DenialReason
	Threshold float64 // effective threshold after the power staircase
}

// #endregion decision
