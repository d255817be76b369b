package fawk

import (
	"errors"

	"punthub/database"
	"punthub/metrics"
	"punthub/models"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
)

type ResultItem struct {
	UserID uint    `json:"userId"`
	Status string  `json:"status"` // WIN | LOSS | VOID
	Pnl    float64 `json:"downPl"`
}

type ResultsRequest struct {
	GameID   string       `json:"gameId"`
	MarketID string       `json:"marketId"`
	RoundID  string       `json:"roundId"`
	Results  []ResultItem `json:"results"`
}

var fawkOutcomes = map[string]string{
	"WIN":  models.BetWon,
	"LOSS": models.BetLost,
	"VOID": models.BetVoid,
}

// Results applies a bulk settlement for one finished round. Each
// player's bet is settled independently; retried items report
// alreadyProcessed instead of failing the batch.
func Results(c *fiber.Ctx) error {
	var req ResultsRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, codeValidation, "invalid request format")
	}
	if req.GameID == "" || req.MarketID == "" || req.RoundID == "" || len(req.Results) == 0 {
		return fail(c, codeValidation, "gameId, marketId, roundId and results are required")
	}

	items := make([]fiber.Map, 0, len(req.Results))

	for _, item := range req.Results {
		if item.UserID == 0 {
			items = append(items, fiber.Map{
				"userId": item.UserID, "errorCode": codeValidation,
				"message": "userId is required",
			})
			continue
		}
		outcome, okOutcome := fawkOutcomes[item.Status]
		if !okOutcome {
			items = append(items, fiber.Map{
				"userId": item.UserID, "errorCode": codeValidation,
				"message": "unknown status " + item.Status,
			})
			continue
		}

		// each player's position has its own dedup key, so one
		// redelivered item never masks another player's settlement
		res, err := services.Settle(database.DB, services.SettleParams{
			Provider:       models.ProviderFawk,
			IdempotencyKey: dedupKey(item.UserID, req.GameID, req.MarketID, req.RoundID),
			Outcome:        outcome,
			Pnl:            item.Pnl,
			Remark:         "fawk round result",
		})
		switch {
		case err == nil:
			items = append(items, fiber.Map{
				"userId": item.UserID, "errorCode": codeOK,
				"credited": res.Credited, "balance": res.Wallet.Credit + res.Wallet.Bonus,
			})
		case errors.Is(err, services.ErrAlreadySettled):
			metrics.DuplicateCallbacks.WithLabelValues(models.ProviderFawk).Inc()
			items = append(items, fiber.Map{
				"userId": item.UserID, "errorCode": codeOK,
				"alreadyProcessed": true,
			})
		case errors.Is(err, services.ErrNotFound):
			items = append(items, fiber.Map{
				"userId": item.UserID, "errorCode": codeNotFound,
				"message": "bet not found",
			})
		default:
			items = append(items, fiber.Map{
				"userId": item.UserID, "errorCode": codeGeneric,
				"message": "settlement failed",
			})
		}
	}

	return ok(c, fiber.Map{"results": items})
}
