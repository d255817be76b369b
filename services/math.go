package services

import (
	"fmt"

	"punthub/helpers"
	"punthub/models"
)

// Wallet is the money snapshot of a user row, used by the pure
// planning functions so they can be tested without a database.
type Wallet struct {
	Credit   float64
	Bonus    float64
	Exposure float64
}

// LiabilityFor computes the amount locked at placement. A back bet
// risks the stake; a lay bet risks the payout.
func LiabilityFor(side string, stake, odds float64) float64 {
	if side == "lay" {
		return helpers.Round2(stake * (odds - 1))
	}
	return helpers.Round2(stake)
}

// PlacementPlan computes the wallet after debiting liability, bonus
// first. Returns the new wallet and how much of the debit the bonus
// absorbed. Rejects before any mutation when funds are short, so a
// failed placement has no partial effect.
func PlacementPlan(w Wallet, liability float64, creditOnly bool) (Wallet, float64, error) {
	if liability <= 0 {
		return w, 0, fmt.Errorf("%w: liability must be positive", ErrValidation)
	}

	available := w.Credit + w.Bonus
	if creditOnly {
		available = w.Credit
	}
	if liability > available {
		return w, 0, ErrInsufficientBalance
	}

	bonusUsed := 0.0
	if !creditOnly && w.Bonus > 0 {
		bonusUsed = w.Bonus
		if bonusUsed > liability {
			bonusUsed = liability
		}
	}

	next := Wallet{
		Credit:   helpers.Round2(w.Credit - (liability - bonusUsed)),
		Bonus:    helpers.Round2(w.Bonus - bonusUsed),
		Exposure: helpers.Round2(w.Exposure + liability),
	}
	return next, bonusUsed, nil
}

// SettlementPlan computes the credit owed for a terminal outcome and
// the terminal status to record. WON payouts are capped at maxPayout.
func SettlementPlan(outcome string, stake, pnl, liability, maxPayout float64) (float64, string, error) {
	switch outcome {
	case models.BetWon:
		payout := helpers.Round2(stake + pnl)
		if maxPayout > 0 && payout > maxPayout {
			payout = maxPayout
		}
		return payout, models.BetWon, nil
	case models.BetLost:
		return 0, models.BetLost, nil
	case models.BetVoid:
		return helpers.Round2(liability), models.BetVoid, nil
	default:
		return 0, "", fmt.Errorf("%w: unknown outcome %q", ErrValidation, outcome)
	}
}

// ReleaseExposure removes one bet's liability from the locked
// exposure, clamping at zero so a replayed release cannot go negative.
func ReleaseExposure(exposure, liability float64) float64 {
	next := helpers.Round2(exposure - liability)
	if next < 0 {
		next = 0
	}
	return next
}
