package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"punthub/helpers"
	"punthub/metrics"
	"punthub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxPayout caps the amount credited for a single winning bet.
// Overridden from config at startup.
var MaxPayout float64 = 500000

type PlaceBetParams struct {
	UserID         uint
	Category       string
	Provider       string
	IdempotencyKey string

	EventID   string
	MarketID  string
	Selection string
	Side      string
	Odds      float64

	Stake     float64
	Liability float64

	// CreditOnly channels may not spend promotional bonus.
	CreditOnly bool

	EventTime *time.Time
	ExtraInfo map[string]any
}

type SettleParams struct {
	// Either BetID or the (Provider, IdempotencyKey) tuple identifies
	// the bet; BetID wins when both are set.
	BetID          uint
	Provider       string
	IdempotencyKey string

	Outcome string // WON | LOST | VOID
	Pnl     float64
	Remark  string
}

// SettlementResult is populated even when the call fails with
// ErrAlreadySettled, so adapters can answer duplicates with the
// current state instead of a hard error.
type SettlementResult struct {
	Bet      *models.Bet
	Credited float64
	Wallet   Wallet
}

// PlaceBet debits liability (bonus first), locks exposure and creates
// the OPEN bet. Fixed write order inside one transaction: Bet row,
// then User row; the ledger entry is enqueued after commit.
func PlaceBet(db *gorm.DB, p PlaceBetParams) (*models.Bet, error) {
	p.IdempotencyKey = strings.TrimSpace(p.IdempotencyKey)
	if p.UserID == 0 || p.Provider == "" || p.IdempotencyKey == "" {
		return nil, fmt.Errorf("%w: user, provider and idempotency key are required", ErrValidation)
	}
	if p.Stake <= 0 || p.Liability <= 0 {
		return nil, fmt.Errorf("%w: stake and liability must be positive", ErrValidation)
	}

	var bet models.Bet
	var debit Entry

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, p.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, p.UserID)
			}
			return err
		}
		if !user.IsActive || user.Banned {
			return fmt.Errorf("%w: user is not allowed to bet", ErrValidation)
		}

		var existing models.Bet
		err := tx.Where("provider = ? AND idempotency_key = ?", p.Provider, p.IdempotencyKey).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateBet, p.Provider, p.IdempotencyKey)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		next, _, err := PlacementPlan(
			Wallet{Credit: user.Credit, Bonus: user.Bonus, Exposure: user.Exposure},
			p.Liability, p.CreditOnly,
		)
		if err != nil {
			return err
		}

		var extra []byte
		if p.ExtraInfo != nil {
			extra, _ = json.Marshal(p.ExtraInfo)
		}

		bet = models.Bet{
			UserID:         p.UserID,
			Category:       p.Category,
			Provider:       p.Provider,
			IdempotencyKey: p.IdempotencyKey,
			EventID:        p.EventID,
			MarketID:       p.MarketID,
			Selection:      p.Selection,
			Side:           p.Side,
			Odds:           p.Odds,
			Stake:          helpers.Round2(p.Stake),
			Liability:      helpers.Round2(p.Liability),
			Status:         models.BetOpen,
			EventTime:      p.EventTime,
			ExtraInfo:      extra,
		}
		if err := tx.Create(&bet).Error; err != nil {
			return err
		}

		if err := tx.Model(&user).Updates(map[string]any{
			"credit":   next.Credit,
			"bonus":    next.Bonus,
			"exposure": next.Exposure,
		}).Error; err != nil {
			return err
		}

		debit = Entry{
			UserID:    p.UserID,
			Type:      models.TrxDebit,
			Amount:    bet.Liability,
			Remark:    fmt.Sprintf("bet placed %s %s", p.Category, p.IdempotencyKey),
			Reference: fmt.Sprintf("bet:%d", bet.ID),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordLedger(debit)
	metrics.BetsPlaced.WithLabelValues(p.Category).Inc()
	return &bet, nil
}

// Settle drives an OPEN bet to WON, LOST or VOID, credits the outcome
// and releases the bet's exposure. Duplicate deliveries hit the
// status guard and come back as ErrAlreadySettled with the current
// wallet attached.
func Settle(db *gorm.DB, p SettleParams) (*SettlementResult, error) {
	res := &SettlementResult{}

	_, target, err := SettlementPlan(p.Outcome, 0, p.Pnl, 0, 0)
	if err != nil {
		return nil, err
	}

	var entry Entry
	txErr := db.Transaction(func(tx *gorm.DB) error {
		bet, user, err := lockBetAndUser(tx, p.BetID, p.Provider, p.IdempotencyKey)
		if err != nil {
			return err
		}
		res.Bet = bet
		res.Wallet = Wallet{Credit: user.Credit, Bonus: user.Bonus, Exposure: user.Exposure}

		if bet.Status != models.BetOpen {
			return ErrAlreadySettled
		}

		amount, _, err := SettlementPlan(p.Outcome, bet.Stake, p.Pnl, bet.Liability, MaxPayout)
		if err != nil {
			return err
		}

		return applySettlement(tx, bet, user, target, p.Pnl, amount, p.Remark, res, &entry)
	})
	if txErr != nil {
		return res, txErr
	}

	recordLedger(entry)
	metrics.Settlements.WithLabelValues(target).Inc()
	return res, nil
}

// Refund moves an OPEN bet to CANCELLED with a full liability refund.
// Used when a placement is rejected or rolled back upstream, as
// opposed to a market-level VOID.
func Refund(db *gorm.DB, provider, idempotencyKey string) (*SettlementResult, error) {
	res := &SettlementResult{}

	var entry Entry
	txErr := db.Transaction(func(tx *gorm.DB) error {
		bet, user, err := lockBetAndUser(tx, 0, provider, idempotencyKey)
		if err != nil {
			return err
		}
		res.Bet = bet
		res.Wallet = Wallet{Credit: user.Credit, Bonus: user.Bonus, Exposure: user.Exposure}

		if bet.Status != models.BetOpen {
			return ErrAlreadySettled
		}

		return applySettlement(tx, bet, user, models.BetCancelled, 0, bet.Liability,
			"provider refund", res, &entry)
	})
	if txErr != nil {
		return res, txErr
	}

	recordLedger(entry)
	metrics.Settlements.WithLabelValues(models.BetCancelled).Inc()
	return res, nil
}

// AdminOverride re-settles a bet in any state to a requested terminal
// state. The balance correction is the difference between the current
// and requested settled effects, applied to credit only; the previous
// settlement's ledger entry is marked reverted and a compensating
// entry is written.
func AdminOverride(db *gorm.DB, betID uint, newStatus string, newPnl float64, actorID uint) (*SettlementResult, error) {
	switch newStatus {
	case models.BetWon, models.BetLost, models.BetVoid, models.BetCancelled:
	default:
		return nil, fmt.Errorf("%w: override target must be terminal, got %q", ErrValidation, newStatus)
	}

	res := &SettlementResult{}
	var prevRef string
	var comp Entry

	txErr := db.Transaction(func(tx *gorm.DB) error {
		bet, user, err := lockBetAndUser(tx, betID, "", "")
		if err != nil {
			return err
		}

		delta := SettlementDelta(bet.Status, newStatus, bet.Pnl, newPnl, bet.Stake, bet.Liability)

		newCredit := helpers.Round2(user.Credit + delta)
		if newCredit < 0 {
			return fmt.Errorf("%w: override would overdraw credit", ErrInsufficientBalance)
		}

		exposure := user.Exposure
		if bet.Status == models.BetOpen {
			exposure = ReleaseExposure(exposure, bet.Liability)
		}

		prevRef = bet.SettlementID
		ref := uuid.NewString()
		oldStatus := bet.Status

		r := tx.Model(bet).Where("id = ? AND status = ?", bet.ID, oldStatus).
			Updates(map[string]any{
				"status":        newStatus,
				"pnl":           newPnl,
				"settlement_id": ref,
			})
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		if err := tx.Model(user).Updates(map[string]any{
			"credit":   newCredit,
			"exposure": exposure,
		}).Error; err != nil {
			return err
		}

		trxType := models.TrxCredit
		if delta < 0 {
			trxType = models.TrxDebit
		}
		comp = Entry{
			UserID:    user.ID,
			Type:      trxType,
			Amount:    helpers.Round2(abs(delta)),
			Remark:    fmt.Sprintf("admin override %s->%s by %d", oldStatus, newStatus, actorID),
			Reference: ref,
		}

		bet.Status = newStatus
		bet.Pnl = newPnl
		bet.SettlementID = ref
		res.Bet = bet
		res.Credited = delta
		res.Wallet = Wallet{Credit: newCredit, Bonus: user.Bonus, Exposure: exposure}
		return nil
	})
	if txErr != nil {
		return res, txErr
	}

	revertLedger(prevRef)
	recordLedger(comp)
	metrics.Settlements.WithLabelValues(newStatus).Inc()
	return res, nil
}

// AdjustCredit applies an administrative balance correction outside
// any bet. Still routes through the recorder like every other
// balance-affecting event.
func AdjustCredit(db *gorm.DB, userID uint, amount float64, remark string, actorID uint) (Wallet, error) {
	var w Wallet
	var entry Entry

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		newCredit := helpers.Round2(user.Credit + amount)
		if newCredit < 0 {
			return ErrInsufficientBalance
		}

		if err := tx.Model(&user).Update("credit", newCredit).Error; err != nil {
			return err
		}

		trxType := models.TrxCredit
		if amount < 0 {
			trxType = models.TrxDebit
		}
		entry = Entry{
			UserID:    userID,
			Type:      trxType,
			Amount:    helpers.Round2(abs(amount)),
			Remark:    fmt.Sprintf("admin adjustment by %d: %s", actorID, remark),
			Reference: uuid.NewString(),
		}

		w = Wallet{Credit: newCredit, Bonus: user.Bonus, Exposure: user.Exposure}
		return nil
	})
	if err != nil {
		return w, err
	}

	recordLedger(entry)
	return w, nil
}

// GetWallet reads a user's money fields without locking.
func GetWallet(db *gorm.DB, userID uint) (Wallet, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Wallet{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return Wallet{}, err
	}
	return Wallet{Credit: user.Credit, Bonus: user.Bonus, Exposure: user.Exposure}, nil
}

// lockBetAndUser loads the bet (by id, or by the provider/key tuple)
// and its owner, both FOR UPDATE. The user row lock is the per-user
// mutual exclusion every balance mutation relies on.
func lockBetAndUser(tx *gorm.DB, betID uint, provider, key string) (*models.Bet, *models.User, error) {
	var bet models.Bet
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	var err error
	if betID != 0 {
		err = q.First(&bet, betID).Error
	} else {
		err = q.Where("provider = ? AND idempotency_key = ?", provider, strings.TrimSpace(key)).
			First(&bet).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: bet", ErrNotFound)
		}
		return nil, nil, err
	}

	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, bet.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: user %d", ErrNotFound, bet.UserID)
		}
		return nil, nil, err
	}
	return &bet, &user, nil
}

// applySettlement performs the shared terminal transition: bet row
// first (race-safe on status), then user row, then the ledger entry
// enqueued by the caller's transaction committing.
func applySettlement(tx *gorm.DB, bet *models.Bet, user *models.User,
	target string, pnl, amount float64, remark string, res *SettlementResult, entry *Entry) error {

	ref := uuid.NewString()

	r := tx.Model(bet).Where("id = ? AND status = ?", bet.ID, models.BetOpen).
		Updates(map[string]any{
			"status":        target,
			"pnl":           pnl,
			"settlement_id": ref,
		})
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		return ErrAlreadySettled
	}

	newCredit := helpers.Round2(user.Credit + amount)
	exposure := ReleaseExposure(user.Exposure, bet.Liability)

	if err := tx.Model(user).Updates(map[string]any{
		"credit":   newCredit,
		"exposure": exposure,
	}).Error; err != nil {
		return err
	}

	if remark == "" {
		remark = fmt.Sprintf("bet settled %s", target)
	}
	*entry = Entry{
		UserID:    user.ID,
		Type:      models.TrxCredit,
		Amount:    amount,
		Remark:    remark,
		Reference: ref,
	}

	bet.Status = target
	bet.Pnl = pnl
	bet.SettlementID = ref
	res.Bet = bet
	res.Credited = amount
	res.Wallet = Wallet{Credit: newCredit, Bonus: user.Bonus, Exposure: exposure}
	return nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
