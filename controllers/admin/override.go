package admin

import (
	"errors"

	"punthub/database"
	"punthub/helpers"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
)

type OverrideRequest struct {
	BetID  uint    `json:"betId"`
	Status string  `json:"status"` // WON | LOST | VOID | CANCELLED
	Pnl    float64 `json:"pnl"`
}

// OverrideBet re-settles a bet to a corrected terminal state. The
// balance change is the difference between the old and new settled
// effects, so the bet may already be in any terminal state.
func OverrideBet(c *fiber.Ctx) error {
	actorID := c.Locals("actor_id").(uint)

	var req OverrideRequest
	if err := c.BodyParser(&req); err != nil || req.BetID == 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_REQUEST")
	}

	res, err := services.AdminOverride(database.DB, req.BetID, req.Status, req.Pnl, actorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return helpers.JSONError(c, fiber.StatusNotFound, "BET_NOT_FOUND")
		case errors.Is(err, services.ErrValidation):
			return helpers.JSONError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrInsufficientBalance):
			return helpers.JSONError(c, fiber.StatusPaymentRequired, "OVERRIDE_WOULD_OVERDRAW")
		case errors.Is(err, services.ErrAlreadySettled):
			return helpers.JSONError(c, fiber.StatusConflict, "BET_CHANGED_CONCURRENTLY")
		default:
			return helpers.JSONError(c, fiber.StatusInternalServerError, "OVERRIDE_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "BET_OVERRIDDEN", fiber.Map{
		"bet":   res.Bet,
		"delta": res.Credited,
	})
}

type AdjustRequest struct {
	UserID uint    `json:"userId"`
	Amount float64 `json:"amount"` // signed
	Remark string  `json:"remark"`
}

// AdjustCredit applies a manual wallet correction; the adjustment is
// ledgered like any other balance event.
func AdjustCredit(c *fiber.Ctx) error {
	actorID := c.Locals("actor_id").(uint)

	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 || req.Amount == 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_REQUEST")
	}

	w, err := services.AdjustCredit(database.DB, req.UserID, req.Amount, req.Remark, actorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return helpers.JSONError(c, fiber.StatusNotFound, "USER_NOT_FOUND")
		case errors.Is(err, services.ErrInsufficientBalance):
			return helpers.JSONError(c, fiber.StatusPaymentRequired, "ADJUSTMENT_WOULD_OVERDRAW")
		default:
			return helpers.JSONError(c, fiber.StatusInternalServerError, "ADJUSTMENT_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "CREDIT_ADJUSTED", fiber.Map{
		"credit":   w.Credit,
		"bonus":    w.Bonus,
		"exposure": w.Exposure,
	})
}
