package services

import (
	"errors"
	"log"
	"time"

	"quest-bounty-system/models"

	"gorm.io/gorm"
)

type QuestService struct {
	DB *gorm.DB
	// Now is the ledger-time source, overridable in tests
	Now func() time.Time
}

func NewQuestService(db *gorm.DB) *QuestService {
	return &QuestService{DB: db, Now: time.Now}
}

// RegisterQuestRequest carries the creator-supplied quest parameters.
type RegisterQuestRequest struct {
	ID              string        `json:"id"`
	RewardAsset     string        `json:"reward_asset"`
	RewardAmount    models.Amount `json:"reward_amount"`
	Verifier        string        `json:"verifier"`
	Deadline        time.Time     `json:"deadline"`
	MaxParticipants uint32        `json:"max_participants"`
}

// RegisterQuest creates a new quest for the calling creator. The identifier
// is caller-chosen and must be unused; the quest starts Active with zero
// claims.
func (s *QuestService) RegisterQuest(creator string, req RegisterQuestRequest) (*models.Quest, error) {
	var quest *models.Quest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Quest
		err := tx.Where("id = ?", req.ID).First(&existing).Error
		if err == nil {
			return ErrQuestAlreadyExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if !req.RewardAmount.IsPositive() {
			return ErrInvalidRewardAmount
		}
		if req.MaxParticipants == 0 {
			return ErrInvalidParticipantLimit
		}
		if !req.Deadline.After(s.Now()) {
			return ErrInvalidDeadline
		}

		quest = &models.Quest{
			ID:              req.ID,
			Creator:         creator,
			RewardAsset:     req.RewardAsset,
			RewardAmount:    req.RewardAmount,
			Verifier:        req.Verifier,
			Deadline:        req.Deadline,
			Status:          models.QuestStatusActive,
			MaxParticipants: req.MaxParticipants,
			TotalClaims:     0,
		}
		if err := tx.Create(quest).Error; err != nil {
			return duplicateAs(err, ErrQuestAlreadyExists)
		}

		return recordEvent(tx, models.EventQuestRegistered, quest.ID, creator, map[string]interface{}{
			"reward_asset":     quest.RewardAsset,
			"reward_amount":    quest.RewardAmount,
			"verifier":         quest.Verifier,
			"deadline":         quest.Deadline,
			"max_participants": quest.MaxParticipants,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🗺️ Quest registered: %s by %s (reward %s %s, cap %d)",
		quest.ID, creator, quest.RewardAmount.String(), quest.RewardAsset, quest.MaxParticipants)
	return quest, nil
}

// GetQuest fetches a quest by its identifier.
func (s *QuestService) GetQuest(id string) (*models.Quest, error) {
	var quest models.Quest
	if err := s.DB.Where("id = ?", id).First(&quest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, err
	}
	return &quest, nil
}

// ListQuests returns quests, optionally filtered by status and/or creator,
// newest first.
func (s *QuestService) ListQuests(status models.QuestStatus, creator string) ([]models.Quest, error) {
	query := s.DB.Model(&models.Quest{})
	if status != "" {
		if !models.ValidQuestStatus(status) {
			return nil, ErrInvalidQuestStatus
		}
		query = query.Where("status = ?", status)
	}
	if creator != "" {
		query = query.Where("creator = ?", creator)
	}

	var quests []models.Quest
	if err := query.Order("created_at DESC").Find(&quests).Error; err != nil {
		return nil, err
	}
	return quests, nil
}

// UpdateQuestStatus applies a creator-requested status change, enforcing the
// transition table. Terminal states (Completed, Expired, Cancelled) have no
// outgoing transitions.
func (s *QuestService) UpdateQuestStatus(id, caller string, newStatus models.QuestStatus) (*models.Quest, error) {
	if !models.ValidQuestStatus(newStatus) {
		return nil, ErrInvalidQuestStatus
	}

	var quest models.Quest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", id).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		if quest.Creator != caller {
			return ErrUnauthorized
		}
		if !models.ValidQuestTransition(quest.Status, newStatus) {
			return ErrInvalidStatusTransition
		}

		quest.Status = newStatus
		if err := tx.Save(&quest).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventQuestStatusUpdated, quest.ID, caller, map[string]interface{}{
			"status": newStatus,
		})
	})
	if err != nil {
		return nil, err
	}
	return &quest, nil
}

// PauseQuest suspends an active quest (convenience wrapper).
func (s *QuestService) PauseQuest(id, caller string) (*models.Quest, error) {
	return s.UpdateQuestStatus(id, caller, models.QuestStatusPaused)
}

// ResumeQuest reactivates a paused quest (convenience wrapper).
func (s *QuestService) ResumeQuest(id, caller string) (*models.Quest, error) {
	return s.UpdateQuestStatus(id, caller, models.QuestStatusActive)
}

// CompleteQuest marks an active quest completed (convenience wrapper).
func (s *QuestService) CompleteQuest(id, caller string) (*models.Quest, error) {
	return s.UpdateQuestStatus(id, caller, models.QuestStatusCompleted)
}

// CancelQuest forces a non-terminal quest to Cancelled. Cancellation is one
// of the two paths that unlock escrow withdrawal without payout.
func (s *QuestService) CancelQuest(id, caller string) (*models.Quest, error) {
	return s.forceStatus(id, caller, models.QuestStatusCancelled)
}

// ExpireQuest forces a non-terminal quest to Expired, regardless of the
// deadline. Creator-only, like cancellation.
func (s *QuestService) ExpireQuest(id, caller string) (*models.Quest, error) {
	return s.forceStatus(id, caller, models.QuestStatusExpired)
}

// forceStatus is the cancel/expire path: it bypasses the Paused leg of the
// transition table but still refuses to leave a terminal state.
func (s *QuestService) forceStatus(id, caller string, target models.QuestStatus) (*models.Quest, error) {
	var quest models.Quest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", id).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		if quest.Creator != caller {
			return ErrUnauthorized
		}
		if quest.Status.IsTerminal() {
			return ErrInvalidStatusTransition
		}

		quest.Status = target
		if err := tx.Save(&quest).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventQuestStatusUpdated, quest.ID, caller, map[string]interface{}{
			"status": target,
		})
	})
	if err != nil {
		return nil, err
	}
	return &quest, nil
}

// IsQuestFull reports whether the quest's claim cap has been reached.
func (s *QuestService) IsQuestFull(id string) (bool, error) {
	quest, err := s.GetQuest(id)
	if err != nil {
		return false, err
	}
	return quest.IsFull(), nil
}

// CheckExpired reports whether the quest's deadline has passed. The check is
// strict: the deadline instant itself is not expired.
func (s *QuestService) CheckExpired(id string) (bool, error) {
	quest, err := s.GetQuest(id)
	if err != nil {
		return false, err
	}
	return quest.IsExpired(s.Now()), nil
}

// validateQuestActive gates submissions: the quest must be Active, inside
// its deadline, and below its participant cap.
func (s *QuestService) validateQuestActive(quest *models.Quest, now time.Time) error {
	if quest.Status != models.QuestStatusActive {
		return ErrQuestNotActive
	}
	if quest.IsExpired(now) {
		return ErrQuestExpired
	}
	if quest.IsFull() {
		return ErrQuestFull
	}
	return nil
}

// autoExpireIfDeadlinePassed is the lazy expiry path: invoked at the top of
// submission processing, never by a timer. Only Active quests flip.
func (s *QuestService) autoExpireIfDeadlinePassed(tx *gorm.DB, quest *models.Quest, now time.Time) error {
	if quest.Status != models.QuestStatusActive || !quest.IsExpired(now) {
		return nil
	}
	quest.Status = models.QuestStatusExpired
	if err := tx.Save(quest).Error; err != nil {
		return err
	}
	return recordEvent(tx, models.EventQuestStatusUpdated, quest.ID, "", map[string]interface{}{
		"status": models.QuestStatusExpired,
		"reason": "deadline_passed",
	})
}

// autoCompleteIfFull closes out a quest whose cap was just reached by an
// approval.
func (s *QuestService) autoCompleteIfFull(tx *gorm.DB, quest *models.Quest) error {
	if quest.Status != models.QuestStatusActive || !quest.IsFull() {
		return nil
	}
	quest.Status = models.QuestStatusCompleted
	if err := tx.Save(quest).Error; err != nil {
		return err
	}
	return recordEvent(tx, models.EventQuestStatusUpdated, quest.ID, "", map[string]interface{}{
		"status": models.QuestStatusCompleted,
		"reason": "participant_limit_reached",
	})
}
