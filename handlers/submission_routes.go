// handlers/submission_routes.go
package handlers

import (
	"fmt"
	"log"

	"quest-bounty-system/middleware"
	"quest-bounty-system/models"
	"quest-bounty-system/services"
	"quest-bounty-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupSubmissionRoutes(app *fiber.App, submissionService *services.SubmissionService) {
	// 🔓 Public reads
	app.Get("/quests/:id/submissions", func(c *fiber.Ctx) error {
		submissions, err := submissionService.ListQuestSubmissions(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(submissions)
	})

	app.Get("/quests/:id/submissions/:submitter", func(c *fiber.Ctx) error {
		submission, err := submissionService.GetSubmission(c.Params("id"), c.Params("submitter"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(submission)
	})

	// 🔐 Secured routes
	userCtx := middleware.UserContextMiddleware()

	app.Get("/user/submissions", userCtx, func(c *fiber.Ctx) error {
		submissions, err := submissionService.ListUserSubmissions(caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(submissions)
	})

	// Accepts either a JSON body carrying a precomputed proof hash, or a
	// multipart form with a "proof" file: the file is stored in R2 and its
	// SHA-256 becomes the proof hash.
	app.Post("/quests/:id/submissions", userCtx, func(c *fiber.Ctx) error {
		questID := c.Params("id")
		submitter := caller(c)

		var proofHash models.ProofHash
		var artifactURL string

		if fileHeader, err := c.FormFile("proof"); err == nil {
			key := fmt.Sprintf("proofs/%s/%s", questID, uuid.NewString())
			url, hash, err := utils.UploadProofArtifact(fileHeader, key)
			if err != nil {
				log.Printf("Proof artifact upload failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store proof artifact"})
			}
			artifactURL = url
			proofHash = hash
		} else {
			var req struct {
				ProofHash string `json:"proof_hash"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
			}
			parsed, err := models.ParseProofHash(req.ProofHash)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			proofHash = parsed
		}

		submission, err := submissionService.SubmitProof(questID, submitter, proofHash, artifactURL)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(submission)
	})

	app.Post("/quests/:id/submissions/:submitter/approve", userCtx, func(c *fiber.Ctx) error {
		submission, err := submissionService.ApproveSubmission(
			c.Context(), c.Params("id"), c.Params("submitter"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(submission)
	})

	app.Post("/quests/:id/submissions/:submitter/reject", userCtx, func(c *fiber.Ctx) error {
		submission, err := submissionService.RejectSubmission(
			c.Params("id"), c.Params("submitter"), caller(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(submission)
	})
}
