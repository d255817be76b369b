package sportsbook

import (
	"errors"
	"fmt"
	"time"

	"punthub/database"
	"punthub/helpers"
	"punthub/models"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
)

type PlaceBetRequest struct {
	EventID   string  `json:"eventId"`
	MarketID  string  `json:"marketId"`
	Selection string  `json:"selection"`
	Side      string  `json:"side"` // back / lay
	Odds      float64 `json:"odds"`
	Stake     float64 `json:"stake"`
	EventTime string  `json:"eventTime"`
}

// PlaceBet is the internal sportsbook placement endpoint. The quoted
// odds are re-validated against the live cache before any money
// moves; 402 signals insufficient balance so the caller can route the
// user to a deposit flow.
func PlaceBet(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	var req PlaceBetRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_REQUEST")
	}
	if req.EventID == "" || req.MarketID == "" || req.Selection == "" ||
		req.Odds <= 1 || req.Stake <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "MISSING_OR_INVALID_FIELDS")
	}
	if req.Side != "back" && req.Side != "lay" {
		return helpers.JSONError(c, fiber.StatusBadRequest, "SIDE_MUST_BE_BACK_OR_LAY")
	}

	if services.Odds != nil {
		if err := services.Odds.Validate(c.Context(),
			req.EventID, req.MarketID, req.Selection, req.Side, req.Odds); err != nil {
			return helpers.JSONError(c, fiber.StatusBadRequest, "ODDS_CHANGED")
		}
	}

	var eventTime *time.Time
	if req.EventTime != "" {
		if t, err := time.Parse(time.RFC3339, req.EventTime); err == nil {
			eventTime = &t
		}
	}

	bet, err := services.PlaceBet(database.DB, services.PlaceBetParams{
		UserID:         u.ID,
		Category:       models.CategorySports,
		Provider:       models.ProviderSportsbook,
		IdempotencyKey: fmt.Sprintf("%d:%s:%s", u.ID, req.EventID, req.MarketID),
		EventID:        req.EventID,
		MarketID:       req.MarketID,
		Selection:      req.Selection,
		Side:           req.Side,
		Odds:           req.Odds,
		Stake:          req.Stake,
		Liability:      services.LiabilityFor(req.Side, req.Stake, req.Odds),
		EventTime:      eventTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientBalance):
			return helpers.JSONError(c, fiber.StatusPaymentRequired, "INSUFFICIENT_BALANCE")
		case errors.Is(err, services.ErrDuplicateBet):
			return helpers.JSONError(c, fiber.StatusBadRequest, "OPEN_BET_EXISTS_FOR_MARKET")
		case errors.Is(err, services.ErrValidation):
			return helpers.JSONError(c, fiber.StatusBadRequest, err.Error())
		default:
			return helpers.JSONError(c, fiber.StatusInternalServerError, "BET_PLACEMENT_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "BET_PLACED", bet)
}
