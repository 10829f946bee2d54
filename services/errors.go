package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Domain errors. Every operation returns one of these (possibly wrapped);
// handlers translate them with HTTPStatus. There is no retry policy — each
// failure is terminal for that invocation.
var (
	// Not-found
	ErrQuestNotFound      = errors.New("quest not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotInitialized     = errors.New("service not initialized")

	// Already-exists
	ErrQuestAlreadyExists      = errors.New("quest already exists")
	ErrSubmissionAlreadyExists = errors.New("submission already exists")
	ErrAlreadyInitialized      = errors.New("already initialized")

	// Unauthorized
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnauthorizedVerifier = errors.New("caller is not the quest verifier")
	ErrUnauthorizedUpgrade  = errors.New("caller is not authorized to upgrade")

	// Invalid-input
	ErrInvalidRewardAmount     = errors.New("reward amount must be positive")
	ErrInvalidParticipantLimit = errors.New("participant limit must be positive")
	ErrInvalidDeadline         = errors.New("deadline must be in the future")
	ErrInvalidEscrowAmount     = errors.New("escrow amount must be positive")
	ErrInvalidProofHash        = errors.New("proof hash must not be zero")
	ErrInvalidQuestStatus      = errors.New("unknown quest status")

	// Invalid-state-transition
	ErrInvalidStatusTransition    = errors.New("invalid quest status transition")
	ErrSubmissionAlreadyProcessed = errors.New("submission already processed")

	// Capacity / expiry
	ErrQuestNotActive   = errors.New("quest is not active")
	ErrQuestExpired     = errors.New("quest deadline has passed")
	ErrQuestFull        = errors.New("quest participant limit reached")
	ErrQuestStillActive = errors.New("quest is still active")

	// Escrow insufficiency
	ErrInsufficientEscrow = errors.New("insufficient escrow balance")
	ErrNoEscrowBalance    = errors.New("no escrow balance to withdraw")
)

// HTTPStatus maps a domain error to the response status the handlers use.
// Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrQuestNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrNotInitialized):
		return fiber.StatusNotFound
	case errors.Is(err, ErrQuestAlreadyExists),
		errors.Is(err, ErrSubmissionAlreadyExists),
		errors.Is(err, ErrAlreadyInitialized),
		errors.Is(err, ErrInvalidStatusTransition),
		errors.Is(err, ErrSubmissionAlreadyProcessed),
		errors.Is(err, ErrQuestNotActive),
		errors.Is(err, ErrQuestExpired),
		errors.Is(err, ErrQuestFull),
		errors.Is(err, ErrQuestStillActive):
		return fiber.StatusConflict
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUnauthorizedVerifier),
		errors.Is(err, ErrUnauthorizedUpgrade):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidRewardAmount),
		errors.Is(err, ErrInvalidParticipantLimit),
		errors.Is(err, ErrInvalidDeadline),
		errors.Is(err, ErrInvalidEscrowAmount),
		errors.Is(err, ErrInvalidProofHash),
		errors.Is(err, ErrInvalidQuestStatus):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInsufficientEscrow),
		errors.Is(err, ErrNoEscrowBalance):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
