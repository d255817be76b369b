package fawk

import (
	"time"

	"punthub/database"
	"punthub/helpers"
	"punthub/models"

	"github.com/gofiber/fiber/v2"
)

type AuthRequest struct {
	Token string `json:"token"`
}

// Auth exchanges a platform session token for the player identity and
// wallet snapshot the game provider needs to open a table.
func Auth(c *fiber.Ctx) error {
	var req AuthRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return fail(c, codeValidation, "token is required")
	}

	var session models.Session
	if err := database.DB.Preload("User").
		Where("sid = ? AND expires_at > ?", req.Token, time.Now()).
		First(&session).Error; err != nil {
		return fail(c, codeAuth, "invalid token")
	}

	u := session.User
	if !u.IsActive || u.Banned {
		return fail(c, codeAuth, "account blocked")
	}

	return ok(c, fiber.Map{
		"userId":   u.ID,
		"username": u.Username,
		"balance":  helpers.Round2(u.Credit + u.Bonus),
		"exposure": u.Exposure,
	})
}
