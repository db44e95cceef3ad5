package npc

// DefaultSpines returns the stock tracked cast. Real deployments register
// spines from the narrative layer's entity definitions; this set covers
// every step of the power staircase for local runs and tests.
func DefaultSpines() []Spine {
	return []Spine{
		{
			ID:       "gregor_kiosk",
			HomeZone: "SERVICE_HALL",
			Power:    2500,
			Rules: map[RuleID]bool{
				RuleNeverOpenServiceDoor: true,
				RuleNeverMentionClosure:  true,
			},
		},
		{
			ID:       "the_projectionist",
			HomeZone: "CINEMA",
			Power:    1800,
			Rules: map[RuleID]bool{
				RuleNeverLeaveHomeZone:    true,
				RuleNeverAcknowledgeCloud: true,
			},
		},
		{
			ID:       "food_court_kid",
			HomeZone: "FOOD_COURT",
			Power:    1200,
			Rules: map[RuleID]bool{
				RuleNeverEnterArcade: true,
			},
		},
		{
			ID:       "dock_foreman",
			HomeZone: "LOADING_DOCK",
			Power:    900,
			Rules: map[RuleID]bool{
				RuleNeverAcknowledgeCloud: true,
			},
		},
		{
			ID:       "maribel_fountain",
			HomeZone: "FOUNTAIN_COURT",
			Power:    500,
			Rules: map[RuleID]bool{
				RuleNeverSpeakFirst:  true,
				RuleNeverCrossAtrium: true,
			},
		},
	}
}
