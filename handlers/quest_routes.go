// handlers/quest_routes.go
package handlers

import (
	"quest-bounty-system/middleware"
	"quest-bounty-system/models"
	"quest-bounty-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a domain error onto its HTTP status. Domain errors are
// surfaced unchanged; anything unrecognized becomes a 500.
func respondError(c *fiber.Ctx, err error) error {
	status := services.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "internal error", "cause": err.Error()})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// caller returns the gateway-asserted principal for the request.
func caller(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService) {
	// 🔓 Public reads — still behind Gateway auth, no user context needed
	app.Get("/quests", func(c *fiber.Ctx) error {
		status := models.QuestStatus(c.Query("status"))
		quests, err := questService.ListQuests(status, c.Query("creator"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quests)
	})

	app.Get("/quests/:id", func(c *fiber.Ctx) error {
		quest, err := questService.GetQuest(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quest)
	})

	app.Get("/quests/:id/full", func(c *fiber.Ctx) error {
		full, err := questService.IsQuestFull(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"quest_id": c.Params("id"), "full": full})
	})

	app.Get("/quests/:id/expired", func(c *fiber.Ctx) error {
		expired, err := questService.CheckExpired(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"quest_id": c.Params("id"), "expired": expired})
	})

	// 🔐 Secured routes — require user context (the asserted principal).
	// Attached per-route: a "/" group would leak onto every route registered
	// after it, public reads included.
	userCtx := middleware.UserContextMiddleware()

	app.Post("/quests", userCtx, func(c *fiber.Ctx) error {
		var req services.RegisterQuestRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.ID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quest id is required"})
		}

		quest, err := questService.RegisterQuest(caller(c), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(quest)
	})

	app.Patch("/quests/:id/status", userCtx, func(c *fiber.Ctx) error {
		var req struct {
			Status models.QuestStatus `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		quest, err := questService.UpdateQuestStatus(c.Params("id"), caller(c), req.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quest)
	})

	app.Post("/quests/:id/pause", userCtx, func(c *fiber.Ctx) error {
		quest, err := questService.PauseQuest(c.Params("id"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quest)
	})

	app.Post("/quests/:id/resume", userCtx, func(c *fiber.Ctx) error {
		quest, err := questService.ResumeQuest(c.Params("id"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quest)
	})

	app.Post("/quests/:id/complete", userCtx, func(c *fiber.Ctx) error {
		quest, err := questService.CompleteQuest(c.Params("id"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quest)
	})

	app.Post("/quests/:id/cancel", userCtx, func(c *fiber.Ctx) error {
		quest, err := questService.CancelQuest(c.Params("id"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quest)
	})

	app.Post("/quests/:id/expire", userCtx, func(c *fiber.Ctx) error {
		quest, err := questService.ExpireQuest(c.Params("id"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(quest)
	})
}
