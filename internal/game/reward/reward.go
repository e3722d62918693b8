// Package reward turns a battle outcome into the currency and experience
// payout the external ledger credits. The math is pure: combat never
// persists rewards, and the ledger never re-derives combat results.
package reward

import (
	"github.com/ironveil/tactics/internal/game/combat"
	"github.com/ironveil/tactics/internal/game/stage"
)

// defeatFraction is the consolation share of the base payout kept on a
// loss, in percent.
const defeatFraction = 25

// Reward is the payout for one battle.
type Reward struct {
	Currency   int
	Experience int
}

// Calculate computes the payout for outcome o against the stage's reward
// table. Victory pays the full base plus a turn bonus for every round
// finished under par, a bonus per surviving player, and any script-granted
// extra. Defeat pays the consolation fraction of the base and nothing
// else.
//
// Postcondition: Currency and Experience are >= 0.
func Calculate(o combat.Outcome, tbl stage.Reward) Reward {
	if !o.Victory {
		return Reward{
			Currency:   tbl.Currency * defeatFraction / 100,
			Experience: tbl.Experience * defeatFraction / 100,
		}
	}

	r := Reward{
		Currency:   tbl.Currency,
		Experience: tbl.Experience,
	}
	if tbl.ParTurns > 0 && o.Rounds < tbl.ParTurns {
		r.Currency += tbl.TurnBonus * (tbl.ParTurns - o.Rounds)
	}
	r.Currency += tbl.SurvivorBonus * o.SurvivingPlayers
	r.Currency += o.BonusCurrency
	if r.Currency < 0 {
		r.Currency = 0
	}
	return r
}
