package fawk

import (
	"errors"
	"fmt"

	"punthub/database"
	"punthub/helpers"
	"punthub/metrics"
	"punthub/models"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
)

type ExposureRequest struct {
	UserID   uint    `json:"userId"`
	GameID   string  `json:"gameId"`
	MarketID string  `json:"marketId"`
	RoundID  string  `json:"roundId"`
	Stake    float64 `json:"stake"`
	Exposure float64 `json:"exposure"` // liability to lock
}

// dedupKey folds the user into the idempotency tuple: a round is
// shared by every player at the table, so the round ids alone would
// collide across users.
func dedupKey(userID uint, gameID, marketID, roundID string) string {
	return fmt.Sprintf("%d:%s:%s:%s", userID, gameID, marketID, roundID)
}

// Exposure places the bet and locks the requested liability. A
// redelivered instruction answers success-shaped with
// alreadyProcessed, never a hard error.
func Exposure(c *fiber.Ctx) error {
	var req ExposureRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, codeValidation, "invalid request format")
	}
	if req.UserID == 0 || req.GameID == "" || req.MarketID == "" || req.RoundID == "" {
		return fail(c, codeValidation, "userId, gameId, marketId and roundId are required")
	}
	if req.Exposure <= 0 {
		return fail(c, codeValidation, "exposure must be positive")
	}
	if req.Stake <= 0 {
		req.Stake = req.Exposure
	}

	key := dedupKey(req.UserID, req.GameID, req.MarketID, req.RoundID)

	bet, err := services.PlaceBet(database.DB, services.PlaceBetParams{
		UserID:         req.UserID,
		Category:       models.CategoryFawk,
		Provider:       models.ProviderFawk,
		IdempotencyKey: key,
		MarketID:       req.MarketID,
		Stake:          req.Stake,
		Liability:      req.Exposure,
		ExtraInfo: map[string]any{
			"gameId":  req.GameID,
			"roundId": req.RoundID,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateBet):
			return alreadyProcessed(c, req.UserID)
		case errors.Is(err, services.ErrInsufficientBalance):
			return fail(c, codeInsufficient, "insufficient balance")
		case errors.Is(err, services.ErrNotFound):
			return fail(c, codeNotFound, "user not found")
		case errors.Is(err, services.ErrValidation):
			return fail(c, codeValidation, err.Error())
		default:
			return fail(c, codeGeneric, "exposure update failed")
		}
	}

	w, err := services.GetWallet(database.DB, req.UserID)
	if err != nil {
		return fail(c, codeGeneric, "wallet read failed")
	}

	return ok(c, fiber.Map{
		"betId":    bet.ID,
		"balance":  helpers.Round2(w.Credit + w.Bonus),
		"exposure": w.Exposure,
	})
}

// alreadyProcessed answers a duplicate delivery with the current
// wallet and the idempotency marker the protocol expects.
func alreadyProcessed(c *fiber.Ctx, userID uint) error {
	metrics.DuplicateCallbacks.WithLabelValues(models.ProviderFawk).Inc()
	w, err := services.GetWallet(database.DB, userID)
	if err != nil {
		return fail(c, codeNotFound, "user not found")
	}
	return ok(c, fiber.Map{
		"alreadyProcessed": true,
		"balance":          helpers.Round2(w.Credit + w.Bonus),
		"exposure":         w.Exposure,
	})
}
