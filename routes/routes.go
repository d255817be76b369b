package routes

import (
	"punthub/controllers/admin"
	"punthub/controllers/fancy"
	"punthub/controllers/fawk"
	"punthub/controllers/sportsbook"
	"punthub/controllers/user"
	"punthub/controllers/wacs"
	"punthub/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	userroutes := app.Group("/user", middlewares.UserAuthMiddleware)
	userroutes.Post("/balance", user.Balance)
	userroutes.Get("/bets", user.OpenBets)

	// internal wagering channels
	sbroutes := app.Group("/sportsbook", middlewares.UserAuthMiddleware)
	sbroutes.Post("/bets/place", sportsbook.PlaceBet)

	fancyroutes := app.Group("/fancy", middlewares.UserAuthMiddleware)
	fancyroutes.Post("/bets/place", fancy.PlaceBet)

	// fawk poker callbacks
	fawkroutes := app.Group("/seamless/fawk", middlewares.FawkAuth())
	fawkroutes.Post("/auth", fawk.Auth)
	fawkroutes.Post("/exposure", fawk.Exposure)
	fawkroutes.Post("/results", fawk.Results)
	fawkroutes.Post("/refund", fawk.Refund)

	// wacs casino: single XML endpoint, method embedded in envelope
	app.Post("/seamless/wacs", wacs.GatewayHandler)

	adminroutes := app.Group("/admin", middlewares.AdminAuth())
	adminroutes.Post("/bets/override", admin.OverrideBet)
	adminroutes.Post("/users/credit", admin.AdjustCredit)
}
