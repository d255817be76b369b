package fawk

import "github.com/gofiber/fiber/v2"

// The FAWK protocol forbids transport-level errors for business
// failures: every response is HTTP 200, success is errorCode/status 0.
const (
	codeOK           = 0
	codeGeneric      = 1
	codeAuth         = 401
	codeInsufficient = 402
	codeNotFound     = 404
	codeValidation   = 422
)

func ok(c *fiber.Ctx, data fiber.Map) error {
	resp := fiber.Map{
		"status":    0,
		"errorCode": codeOK,
	}
	for k, v := range data {
		resp[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func fail(c *fiber.Ctx, code int, msg string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    1,
		"errorCode": code,
		"message":   msg,
	})
}
