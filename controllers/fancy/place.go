package fancy

import (
	"errors"
	"fmt"
	"strconv"
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
	Line      float64 `json:"line"` // runs line, e.g. 45.5
	Side      string  `json:"side"` // yes / no
	Odds      float64 `json:"odds"`
	Stake     float64 `json:"stake"`
	EventTime string  `json:"eventTime"`
}

// PlaceBet places a fancy (session runs) bet. Fancy positions spend
// credit only, and at most one open position per market per user is
// allowed.
func PlaceBet(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	var req PlaceBetRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, fiber.StatusBadRequest, "INVALID_REQUEST")
	}
	if req.EventID == "" || req.MarketID == "" || req.Line <= 0 ||
		req.Odds <= 1 || req.Stake <= 0 {
		return helpers.JSONError(c, fiber.StatusBadRequest, "MISSING_OR_INVALID_FIELDS")
	}
	if req.Side != "yes" && req.Side != "no" {
		return helpers.JSONError(c, fiber.StatusBadRequest, "SIDE_MUST_BE_YES_OR_NO")
	}

	side := "back"
	if req.Side == "no" {
		side = "lay"
	}

	if services.Odds != nil {
		if err := services.Odds.Validate(c.Context(),
			req.EventID, req.MarketID, formatLine(req.Line), side, req.Odds); err != nil {
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
		Category:       models.CategoryFancy,
		Provider:       models.ProviderFancy,
		IdempotencyKey: fmt.Sprintf("%d:%s:%s", u.ID, req.EventID, req.MarketID),
		EventID:        req.EventID,
		MarketID:       req.MarketID,
		Selection:      formatLine(req.Line),
		Side:           req.Side,
		Odds:           req.Odds,
		Stake:          req.Stake,
		Liability:      services.LiabilityFor(side, req.Stake, req.Odds),
		CreditOnly:     true,
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

func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}
