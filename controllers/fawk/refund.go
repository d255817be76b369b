package fawk

import (
	"errors"

	"punthub/database"
	"punthub/helpers"
	"punthub/metrics"
	"punthub/models"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
)

type RefundRequest struct {
	UserID   uint   `json:"userId"`
	GameID   string `json:"gameId"`
	MarketID string `json:"marketId"`
	RoundID  string `json:"roundId"`
}

// Refund cancels an open position and returns its locked liability,
// used when the provider aborts a round after the debit.
func Refund(c *fiber.Ctx) error {
	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, codeValidation, "invalid request format")
	}
	if req.UserID == 0 || req.GameID == "" || req.MarketID == "" || req.RoundID == "" {
		return fail(c, codeValidation, "userId, gameId, marketId and roundId are required")
	}

	res, err := services.Refund(database.DB, models.ProviderFawk,
		dedupKey(req.UserID, req.GameID, req.MarketID, req.RoundID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadySettled):
			metrics.DuplicateCallbacks.WithLabelValues(models.ProviderFawk).Inc()
			return ok(c, fiber.Map{"alreadyProcessed": true})
		case errors.Is(err, services.ErrNotFound):
			return fail(c, codeNotFound, "bet not found")
		default:
			return fail(c, codeGeneric, "refund failed")
		}
	}

	return ok(c, fiber.Map{
		"refunded": res.Credited,
		"balance":  helpers.Round2(res.Wallet.Credit + res.Wallet.Bonus),
		"exposure": res.Wallet.Exposure,
	})
}
