// handlers/escrow_routes.go
package handlers

import (
	"quest-bounty-system/middleware"
	"quest-bounty-system/models"
	"quest-bounty-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEscrowRoutes(app *fiber.App, escrowService *services.EscrowService) {
	app.Get("/quests/:id/escrow", func(c *fiber.Ctx) error {
		balance, err := escrowService.GetBalance(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"quest_id": c.Params("id"), "balance": balance})
	})

	userCtx := middleware.UserContextMiddleware()

	app.Post("/quests/:id/escrow/deposit", userCtx, func(c *fiber.Ctx) error {
		var req struct {
			Amount models.Amount `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		account, err := escrowService.Deposit(c.Context(), c.Params("id"), caller(c), req.Amount)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(account)
	})

	app.Post("/quests/:id/escrow/withdraw", userCtx, func(c *fiber.Ctx) error {
		withdrawn, err := escrowService.WithdrawUnclaimed(c.Context(), c.Params("id"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"quest_id": c.Params("id"), "withdrawn": withdrawn})
	})
}
