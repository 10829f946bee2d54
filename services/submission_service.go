package services

import (
	"context"
	"errors"
	"log"
	"time"

	"quest-bounty-system/models"

	"gorm.io/gorm"
)

type SubmissionService struct {
	DB         *gorm.DB
	Quests     *QuestService
	Escrow     *EscrowService
	Reputation *ReputationService
	Now        func() time.Time
}

func NewSubmissionService(db *gorm.DB, quests *QuestService, escrow *EscrowService, reputation *ReputationService) *SubmissionService {
	return &SubmissionService{
		DB:         db,
		Quests:     quests,
		Escrow:     escrow,
		Reputation: reputation,
		Now:        time.Now,
	}
}

// SubmitProof records a Pending submission for (quest, submitter). Lazy
// expiry runs first: a quest whose deadline passed flips to Expired here,
// in this transaction, and the submission is then refused. Submitting
// exactly at the deadline instant still succeeds.
func (s *SubmissionService) SubmitProof(questID, submitter string, proofHash models.ProofHash, artifactURL string) (*models.Submission, error) {
	now := s.Now()

	var submission *models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		if err := lockForUpdate(tx).Where("id = ?", questID).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		if err := s.Quests.autoExpireIfDeadlinePassed(tx, &quest, now); err != nil {
			return err
		}
		if err := s.Quests.validateQuestActive(&quest, now); err != nil {
			return err
		}

		var existing models.Submission
		err := tx.Where("quest_id = ? AND submitter = ?", questID, submitter).First(&existing).Error
		if err == nil {
			return ErrSubmissionAlreadyExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if proofHash.IsZero() {
			return ErrInvalidProofHash
		}

		submission = &models.Submission{
			QuestID:     questID,
			Submitter:   submitter,
			ProofHash:   proofHash,
			ArtifactURL: artifactURL,
			Status:      models.SubmissionStatusPending,
			SubmittedAt: now,
		}
		if err := tx.Create(submission).Error; err != nil {
			return duplicateAs(err, ErrSubmissionAlreadyExists)
		}

		return recordEvent(tx, models.EventProofSubmitted, questID, submitter, map[string]interface{}{
			"proof_hash": proofHash,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📬 Proof submitted: quest=%s by %s", questID, submitter)
	return submission, nil
}

// GetSubmission fetches one submission by its composite key.
func (s *SubmissionService) GetSubmission(questID, submitter string) (*models.Submission, error) {
	var submission models.Submission
	err := s.DB.Where("quest_id = ? AND submitter = ?", questID, submitter).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListQuestSubmissions returns every submission for a quest, oldest first.
func (s *SubmissionService) ListQuestSubmissions(questID string) ([]models.Submission, error) {
	if _, err := s.Quests.GetQuest(questID); err != nil {
		return nil, err
	}
	var submissions []models.Submission
	err := s.DB.Where("quest_id = ?", questID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

// ListUserSubmissions returns every submission a user has made, newest first.
func (s *SubmissionService) ListUserSubmissions(user string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.DB.Where("submitter = ?", user).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// ApproveSubmission is the payout path, one atomic unit: approve, count the
// claim, auto-complete the quest if the cap is reached, debit escrow and pay
// the submitter, award XP, mark the submission Paid. Any failure aborts the
// whole sequence — no partial state persists. The quest-full re-check guards
// the race where two approvals passed an earlier read of total_claims.
func (s *SubmissionService) ApproveSubmission(ctx context.Context, questID, submitter, verifier string) (*models.Submission, error) {
	var submission models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		if err := lockForUpdate(tx).Where("id = ?", questID).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		if quest.Verifier != verifier {
			return ErrUnauthorizedVerifier
		}

		if err := lockForUpdate(tx).Where("quest_id = ? AND submitter = ?", questID, submitter).
			First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}

		if submission.Status != models.SubmissionStatusPending {
			return ErrSubmissionAlreadyProcessed
		}
		if quest.IsFull() {
			return ErrQuestFull
		}

		submission.Status = models.SubmissionStatusApproved
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		quest.TotalClaims++
		if err := tx.Save(&quest).Error; err != nil {
			return err
		}
		if err := s.Quests.autoCompleteIfFull(tx, &quest); err != nil {
			return err
		}

		if err := s.Escrow.processPayout(ctx, tx, &quest, submitter); err != nil {
			return err
		}

		if _, err := s.Reputation.awardXPTx(tx, submitter, QuestCompletionXP); err != nil {
			return err
		}

		submission.Status = models.SubmissionStatusPaid
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventSubmissionApproved, questID, verifier, map[string]interface{}{
			"submitter": submitter,
			"reward":    quest.RewardAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Submission approved and paid: quest=%s submitter=%s", questID, submitter)
	return &submission, nil
}

// RejectSubmission marks a pending submission Rejected. Verifier-gated,
// terminal, no escrow or reputation effect.
func (s *SubmissionService) RejectSubmission(questID, submitter, verifier string) (*models.Submission, error) {
	var submission models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		if err := lockForUpdate(tx).Where("id = ?", questID).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		if quest.Verifier != verifier {
			return ErrUnauthorizedVerifier
		}

		if err := lockForUpdate(tx).Where("quest_id = ? AND submitter = ?", questID, submitter).
			First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}

		if submission.Status != models.SubmissionStatusPending {
			return ErrSubmissionAlreadyProcessed
		}

		submission.Status = models.SubmissionStatusRejected
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventSubmissionRejected, questID, verifier, map[string]interface{}{
			"submitter": submitter,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🚫 Submission rejected: quest=%s submitter=%s", questID, submitter)
	return &submission, nil
}
