// handlers/reputation_routes.go
package handlers

import (
	"quest-bounty-system/middleware"
	"quest-bounty-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReputationRoutes(app *fiber.App, reputationService *services.ReputationService) {
	app.Get("/users/:address/stats", func(c *fiber.Ctx) error {
		stats, err := reputationService.GetUserStats(c.Params("address"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})

	userCtx := middleware.UserContextMiddleware()

	app.Get("/user/stats", userCtx, func(c *fiber.Ctx) error {
		stats, err := reputationService.GetUserStats(caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/badges/grant", func(c *fiber.Ctx) error {
		var req struct {
			User  string `json:"user"`
			Badge string `json:"badge"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.User == "" || req.Badge == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user and badge are required"})
		}

		stats, err := reputationService.GrantBadge(caller(c), req.User, req.Badge)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})
}
