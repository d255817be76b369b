package wacs

import (
	"encoding/xml"
	"errors"
	"fmt"

	"punthub/database"
	"punthub/helpers"
	"punthub/metrics"
	"punthub/middlewares"
	"punthub/models"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
)

const (
	codeValidation   = 422
	codeAuth         = 401
	codeNotFound     = 404
	codeInsufficient = 402
	codeInternal     = 500
	codeUnknown      = 405
)

// GatewayHandler is the single WACS endpoint. The envelope's embedded
// method name selects the operation; business failures still answer
// with a well-formed result envelope.
func GatewayHandler(c *fiber.Ctx) error {
	var req Request
	if err := xml.Unmarshal(c.Body(), &req); err != nil {
		return respond(c, failure(codeValidation, "malformed envelope"))
	}

	if _, err := middlewares.AuthenticateProvider(models.ProviderWacs, req.Key, c.IP()); err != nil {
		return respond(c, failure(codeAuth, "authentication failed"))
	}

	switch req.Method {
	case "getPlayerInfo":
		return respond(c, playerInfo(req.Params, true))
	case "getBalance":
		return respond(c, playerInfo(req.Params, false))
	case "bet":
		return respond(c, bet(req.Params))
	case "win":
		return respond(c, win(req.Params))
	case "refundTransaction":
		return respond(c, refund(req.Params))
	default:
		return respond(c, failure(codeUnknown, "unknown method "+req.Method))
	}
}

func respond(c *fiber.Ctx, r Result) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXML)
	body, err := xml.Marshal(r)
	if err != nil {
		return c.Status(fiber.StatusOK).SendString(`<result success="0"/>`)
	}
	return c.Status(fiber.StatusOK).Send(body)
}

func dedupKey(p Params) string {
	return fmt.Sprintf("%s:%s:%s", p.GameID, p.RoundID, p.OrderID)
}

func playerInfo(p Params, withIdentity bool) Result {
	var user models.User
	if err := database.DB.First(&user, p.UserID).Error; err != nil {
		return failure(codeNotFound, "player not found")
	}

	rs := Returnset{
		Balance: helpers.ToMinor(user.Credit + user.Bonus),
	}
	if withIdentity {
		rs.UserID = user.ID
		rs.Username = user.Username
	}
	return success(rs)
}

// bet debits the stake and opens the position. WACS play is funded
// from credit only; a redelivered bet answers alreadyProcessed with
// the stake debited exactly once.
func bet(p Params) Result {
	if p.UserID == 0 || p.GameID == "" || p.RoundID == "" || p.OrderID == "" || p.Amount <= 0 {
		return failure(codeValidation, "missing required params")
	}

	stake := helpers.FromMinor(p.Amount)

	_, err := services.PlaceBet(database.DB, services.PlaceBetParams{
		UserID:         p.UserID,
		Category:       models.CategoryWacs,
		Provider:       models.ProviderWacs,
		IdempotencyKey: dedupKey(p),
		EventID:        p.GameID,
		MarketID:       p.RoundID,
		Stake:          stake,
		Liability:      stake,
		CreditOnly:     true,
		ExtraInfo:      map[string]any{"orderId": p.OrderID},
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateBet):
			metrics.DuplicateCallbacks.WithLabelValues(models.ProviderWacs).Inc()
			return walletResult(p.UserID, true)
		case errors.Is(err, services.ErrInsufficientBalance):
			return failure(codeInsufficient, "insufficient balance")
		case errors.Is(err, services.ErrNotFound):
			return failure(codeNotFound, "player not found")
		case errors.Is(err, services.ErrValidation):
			return failure(codeValidation, err.Error())
		default:
			return failure(codeInternal, "bet failed")
		}
	}

	return walletResult(p.UserID, false)
}

// win settles the round. Amount is the total return; zero means the
// round was lost and nothing is credited.
func win(p Params) Result {
	if p.UserID == 0 || p.GameID == "" || p.RoundID == "" || p.OrderID == "" || p.Amount < 0 {
		return failure(codeValidation, "missing required params")
	}

	key := dedupKey(p)

	var existing models.Bet
	if err := database.DB.
		Where("provider = ? AND idempotency_key = ?", models.ProviderWacs, key).
		First(&existing).Error; err != nil {
		return failure(codeNotFound, "bet not found")
	}

	outcome := models.BetLost
	pnl := 0.0
	if p.Amount > 0 {
		outcome = models.BetWon
		pnl = helpers.Round2(helpers.FromMinor(p.Amount) - existing.Stake)
	}

	res, err := services.Settle(database.DB, services.SettleParams{
		Provider:       models.ProviderWacs,
		IdempotencyKey: key,
		Outcome:        outcome,
		Pnl:            pnl,
		Remark:         "wacs round settled",
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadySettled):
			metrics.DuplicateCallbacks.WithLabelValues(models.ProviderWacs).Inc()
			return walletResult(p.UserID, true)
		case errors.Is(err, services.ErrNotFound):
			return failure(codeNotFound, "bet not found")
		default:
			return failure(codeInternal, "settlement failed")
		}
	}

	return success(Returnset{
		Balance: helpers.ToMinor(res.Wallet.Credit + res.Wallet.Bonus),
	})
}

func refund(p Params) Result {
	if p.UserID == 0 || p.GameID == "" || p.RoundID == "" || p.OrderID == "" {
		return failure(codeValidation, "missing required params")
	}

	res, err := services.Refund(database.DB, models.ProviderWacs, dedupKey(p))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadySettled):
			metrics.DuplicateCallbacks.WithLabelValues(models.ProviderWacs).Inc()
			return walletResult(p.UserID, true)
		case errors.Is(err, services.ErrNotFound):
			return failure(codeNotFound, "bet not found")
		default:
			return failure(codeInternal, "refund failed")
		}
	}

	return success(Returnset{
		Balance: helpers.ToMinor(res.Wallet.Credit + res.Wallet.Bonus),
	})
}

func walletResult(userID uint, alreadyProcessed bool) Result {
	w, err := services.GetWallet(database.DB, userID)
	if err != nil {
		return failure(codeNotFound, "player not found")
	}
	rs := Returnset{
		Balance: helpers.ToMinor(w.Credit + w.Bonus),
	}
	if alreadyProcessed {
		rs.AlreadyProcessed = 1
	}
	return success(rs)
}
