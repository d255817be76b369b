package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Username string `gorm:"uniqueIndex;size:32" json:"username"`

	// Credit is the withdrawable balance. Never goes negative.
	Credit float64 `json:"credit"`
	// Bonus is the promotional balance, consumed before credit on debits.
	Bonus float64 `json:"bonus"`
	// Exposure is the magnitude of liability locked across OPEN bets.
	Exposure float64 `json:"exposure"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	Banned   bool `gorm:"default:false" json:"banned"`

	Bets         []Bet         `gorm:"foreignKey:UserID"`
	Transactions []Transaction `gorm:"foreignKey:UserID"`
}
