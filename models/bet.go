package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bet categories, one per wagering channel.
const (
	CategorySports = "sports"
	CategoryFancy  = "sports_fancy"
	CategoryFawk   = "fawk"
	CategoryWacs   = "wacs"
)

// Bet statuses. OPEN is the only non-terminal state; a terminal bet
// never re-transitions.
const (
	BetOpen      = "OPEN"
	BetWon       = "WON"
	BetLost      = "LOST"
	BetVoid      = "VOID"
	BetCancelled = "CANCELLED"
)

type Bet struct {
	gorm.Model

	UserID   uint   `gorm:"index" json:"user_id"`
	Category string `gorm:"size:16;index" json:"category"`

	// Provider + IdempotencyKey is the normalized dedup tuple. Each
	// adapter folds its own gameId/roundId/orderId combination into
	// IdempotencyKey before calling the lifecycle manager.
	Provider       string `gorm:"size:32;index:idx_provider_key,unique" json:"provider"`
	IdempotencyKey string `gorm:"size:128;index:idx_provider_key,unique" json:"idempotency_key"`

	EventID   string `gorm:"size:64;index" json:"event_id"`
	MarketID  string `gorm:"size:64;index" json:"market_id"`
	Selection string `gorm:"size:128" json:"selection"`
	Side      string `gorm:"size:8" json:"side"` // back / lay

	Odds      float64 `json:"odds"`
	Stake     float64 `json:"stake"`
	Liability float64 `json:"liability"`
	Pnl       float64 `json:"pnl"`

	Status string `gorm:"size:16;index" json:"status"`

	// SettlementID references the Transaction that finalized this bet.
	SettlementID string `gorm:"size:64" json:"settlement_id"`

	EventTime *time.Time     `gorm:"index" json:"event_time"`
	ExtraInfo datatypes.JSON `gorm:"type:jsonb" json:"extra_info"`
}

// Terminal reports whether the bet has reached a final status.
func (b *Bet) Terminal() bool {
	return b.Status != BetOpen
}
