package middlewares

import (
	"time"

	"punthub/database"
	"punthub/helpers"
	"punthub/models"

	"github.com/gofiber/fiber/v2"
)

func UserAuthMiddleware(c *fiber.Ctx) error {
	sid := c.Get("X-Session-Id")
	if sid == "" {
		return helpers.JSONError(c, fiber.StatusUnauthorized, "SESSION_REQUIRED")
	}

	var session models.Session
	if err := database.DB.Preload("User").
		Where("sid = ? AND expires_at > ?", sid, time.Now()).
		First(&session).Error; err != nil {
		return helpers.JSONError(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	if !session.User.IsActive || session.User.Banned {
		return helpers.JSONError(c, fiber.StatusForbidden, "ACCOUNT_BLOCKED")
	}

	c.Locals("user", session.User)
	return c.Next()
}
