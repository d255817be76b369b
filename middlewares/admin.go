package middlewares

import (
	"os"
	"strconv"

	"punthub/helpers"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth guards the override and adjustment endpoints. Elevated
// callers identify with the shared admin key plus their actor id.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Admin-Key")
		if key == "" || key != os.Getenv("ADMIN_API_KEY") {
			return helpers.JSONError(c, fiber.StatusUnauthorized, "INVALID_ADMIN_KEY")
		}

		actorID, err := strconv.ParseUint(c.Get("X-Actor-Id"), 10, 64)
		if err != nil || actorID == 0 {
			return helpers.JSONError(c, fiber.StatusBadRequest, "ACTOR_ID_REQUIRED")
		}

		c.Locals("actor_id", uint(actorID))
		return c.Next()
	}
}
