package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Provider names used as the first half of the bet dedup tuple.
const (
	ProviderSportsbook = "sportsbook"
	ProviderFancy      = "fancy"
	ProviderFawk       = "fawk"
	ProviderWacs       = "wacs"
)

// GameProvider holds one external channel's credential set.
type GameProvider struct {
	gorm.Model

	Name   string `gorm:"uniqueIndex;size:32" json:"name"`
	APIKey string `gorm:"size:128" json:"api_key"`

	// AllowedIPs is a JSON array of IPs permitted to call back.
	// Empty means no IP restriction.
	AllowedIPs datatypes.JSON `gorm:"type:jsonb" json:"allowed_ips"`

	LastSeenIP string     `gorm:"size:45" json:"last_seen_ip"`
	LastSeenAt *time.Time `json:"last_seen_at"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}
