// handlers/admin_routes.go
package handlers

import (
	"quest-bounty-system/middleware"
	"quest-bounty-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, configService *services.ConfigService) {
	app.Get("/config", func(c *fiber.Ctx) error {
		config, err := configService.GetConfig()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(config)
	})

	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/initialize", func(c *fiber.Ctx) error {
		config, err := configService.Initialize(caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(config)
	})

	adminGroup.Patch("/config", func(c *fiber.Ctx) error {
		var req struct {
			NewAdmin *string `json:"new_admin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		config, err := configService.UpdateConfig(caller(c), req.NewAdmin)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(config)
	})

	adminGroup.Post("/upgrade/authorize", func(c *fiber.Ctx) error {
		if err := configService.AuthorizeUpgrade(caller(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "upgrade authorized"})
	})
}
