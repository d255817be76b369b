package services

import (
	"punthub/helpers"
	"punthub/models"
)

// settledEffect is the amount a given terminal status credited back to
// the user, relative to the liability already debited at placement.
// OPEN and LOST return nothing; VOID and CANCELLED return the locked
// liability; WON returns stake plus pnl.
func settledEffect(status string, pnl, stake, liability float64) float64 {
	switch status {
	case models.BetWon:
		return helpers.Round2(stake + pnl)
	case models.BetVoid, models.BetCancelled:
		return helpers.Round2(liability)
	default: // OPEN, LOST
		return 0
	}
}

// SettlementDelta computes the signed balance correction needed to move
// a bet from its current settled effect to a requested new one. This is
// the administrative override calculation: the bet may already be in
// any terminal state, so the delta is the difference between effects,
// never a flat credit or debit.
func SettlementDelta(curStatus, newStatus string, curPnl, newPnl, stake, liability float64) float64 {
	cur := settledEffect(curStatus, curPnl, stake, liability)
	next := settledEffect(newStatus, newPnl, stake, liability)
	return helpers.Round2(next - cur)
}
