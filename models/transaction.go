package models

import "gorm.io/gorm"

const (
	TrxCredit = "credit"
	TrxDebit  = "debit"
)

const (
	TrxCompleted = "completed"
	TrxReverted  = "reverted"
)

// Transaction is an append-only ledger entry. Rows are never updated
// except to flip Status to reverted; the monetary effect of a revert is
// always re-applied as a new row.
type Transaction struct {
	gorm.Model

	UserID uint   `gorm:"index" json:"user_id"`
	Type   string `gorm:"size:8" json:"type"`

	// Amount is always a non-negative magnitude; Type carries the sign.
	Amount float64 `json:"amount"`

	Status    string `gorm:"size:16;index" json:"status"`
	Remark    string `gorm:"size:255" json:"remark"`
	Reference string `gorm:"size:64;index" json:"reference"`
}
