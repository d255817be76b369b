package middlewares

import (
	"encoding/json"
	"errors"
	"time"

	"punthub/database"
	"punthub/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var ErrProviderAuth = errors.New("provider authentication failed")

// AuthenticateProvider checks an inbound callback's key and source IP
// against the channel's credential row, and stamps last-seen. Shared
// by the FAWK middleware and the WACS envelope handler.
func AuthenticateProvider(name, apiKey, ip string) (*models.GameProvider, error) {
	var provider models.GameProvider
	if err := database.DB.
		Where("name = ? AND is_active = true", name).
		First(&provider).Error; err != nil {
		return nil, ErrProviderAuth
	}

	if provider.APIKey == "" || provider.APIKey != apiKey {
		return nil, ErrProviderAuth
	}

	if len(provider.AllowedIPs) > 0 {
		var allowed []string
		if err := json.Unmarshal(provider.AllowedIPs, &allowed); err == nil && len(allowed) > 0 {
			ok := false
			for _, a := range allowed {
				if a == ip {
					ok = true
					break
				}
			}
			if !ok {
				return nil, ErrProviderAuth
			}
		}
	}

	now := time.Now()
	if err := database.DB.Model(&provider).Updates(map[string]any{
		"last_seen_ip": ip,
		"last_seen_at": now,
	}).Error; err != nil {
		zap.S().Warnw("provider last-seen stamp failed",
			"provider", name, "ip", ip, "error", err)
	}
	return &provider, nil
}

// FawkAuth guards the FAWK callback group. The protocol forbids HTTP
// error codes for business failures, so auth failures still answer 200
// with a logical error code.
func FawkAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := AuthenticateProvider(models.ProviderFawk, c.Get("X-Operator-Key"), c.IP()); err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"status":    1,
				"errorCode": 401,
				"message":   "operator authentication failed",
			})
		}
		return c.Next()
	}
}
