package user

import (
	"punthub/database"
	"punthub/helpers"
	"punthub/models"
	"punthub/services"

	"github.com/gofiber/fiber/v2"
)

func Balance(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	w, err := services.GetWallet(database.DB, u.ID)
	if err != nil {
		return helpers.JSONError(c, fiber.StatusNotFound, "USER_NOT_FOUND")
	}

	return helpers.JSONSuccess(c, "OK", fiber.Map{
		"credit":    w.Credit,
		"bonus":     w.Bonus,
		"exposure":  w.Exposure,
		"available": helpers.Round2(w.Credit + w.Bonus),
	})
}

func OpenBets(c *fiber.Ctx) error {
	u := c.Locals("user").(models.User)

	var bets []models.Bet
	if err := database.DB.
		Where("user_id = ? AND status = ?", u.ID, models.BetOpen).
		Order("created_at desc").
		Find(&bets).Error; err != nil {
		return helpers.JSONError(c, fiber.StatusInternalServerError, "DB_ERROR")
	}

	return helpers.JSONSuccess(c, "OK", bets)
}
