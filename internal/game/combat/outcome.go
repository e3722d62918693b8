package combat

// Outcome is the terminal record of one battle, handed to the external
// reward ledger. Combat computes it once when a terminal phase is reached
// and never persists anything itself.
type Outcome struct {
	Victory          bool
	StageID          string
	Rounds           int
	SurvivingPlayers int
	// BonusCurrency carries any extra payout granted by stage script
	// hooks; zero for battles without scripts.
	BonusCurrency int
}

// OutcomeOf summarises a terminal state.
//
// Precondition: s.GameOver() must be true.
func OutcomeOf(s *State, stageID string) Outcome {
	return Outcome{
		Victory:          s.Victory(),
		StageID:          stageID,
		Rounds:           s.Turn,
		SurvivingPlayers: len(s.Living(TeamPlayer)),
	}
}
