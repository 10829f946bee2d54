package services

import (
	"context"
	"errors"
	"log"

	"quest-bounty-system/models"

	"gorm.io/gorm"
)

type EscrowService struct {
	DB     *gorm.DB
	Ledger TokenLedger
}

func NewEscrowService(db *gorm.DB, ledger TokenLedger) *EscrowService {
	return &EscrowService{DB: db, Ledger: ledger}
}

// Deposit escrows reward funds for a quest. Only the creator may deposit,
// only while the quest is Active or Paused, and deposits are additive. The
// token transfer into custody and the balance credit commit together; a
// failed transfer aborts the transaction.
func (s *EscrowService) Deposit(ctx context.Context, questID, depositor string, amount models.Amount) (*models.EscrowAccount, error) {
	var account models.EscrowAccount
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if !amount.IsPositive() {
			return ErrInvalidEscrowAmount
		}

		var quest models.Quest
		if err := lockForUpdate(tx).Where("id = ?", questID).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		if quest.Creator != depositor {
			return ErrUnauthorized
		}
		if quest.Status != models.QuestStatusActive && quest.Status != models.QuestStatusPaused {
			return ErrQuestNotActive
		}

		if err := s.Ledger.Transfer(ctx, quest.RewardAsset, depositor, CustodyAccount, amount); err != nil {
			return err
		}

		if err := s.loadAccountForUpdate(tx, questID, &account); err != nil {
			return err
		}
		account.Balance = account.Balance.Add(amount)
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventEscrowDeposited, questID, depositor, map[string]interface{}{
			"amount":  amount,
			"balance": account.Balance,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("💰 Escrow deposit: quest=%s +%s → balance=%s", questID, amount.String(), account.Balance.String())
	return &account, nil
}

// GetBalance returns the quest's escrow balance. Accounts are implicit:
// a quest with no deposits yet has balance zero.
func (s *EscrowService) GetBalance(questID string) (models.Amount, error) {
	var account models.EscrowAccount
	err := s.DB.Where("quest_id = ?", questID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewAmount(0), nil
	}
	if err != nil {
		return models.Amount{}, err
	}
	return account.Balance, nil
}

// processPayout debits reward_amount from the quest's escrow and transfers
// it from custody to the recipient. Runs on the caller's transaction so the
// debit commits or aborts together with the submission state change.
func (s *EscrowService) processPayout(ctx context.Context, tx *gorm.DB, quest *models.Quest, recipient string) error {
	var account models.EscrowAccount
	if err := s.loadAccountForUpdate(tx, quest.ID, &account); err != nil {
		return err
	}

	if account.Balance.Cmp(quest.RewardAmount) < 0 {
		return ErrInsufficientEscrow
	}

	account.Balance = account.Balance.Sub(quest.RewardAmount)
	if err := tx.Save(&account).Error; err != nil {
		return err
	}

	if err := s.Ledger.Transfer(ctx, quest.RewardAsset, CustodyAccount, recipient, quest.RewardAmount); err != nil {
		return err
	}

	return recordEvent(tx, models.EventEscrowPaidOut, quest.ID, recipient, map[string]interface{}{
		"amount":  quest.RewardAmount,
		"balance": account.Balance,
	})
}

// WithdrawUnclaimed returns the remaining escrow balance to the creator once
// the quest is terminal (Completed, Expired or Cancelled) and zeroes the
// account. A second withdrawal is structurally impossible: the balance is
// zero after the first.
func (s *EscrowService) WithdrawUnclaimed(ctx context.Context, questID, caller string) (models.Amount, error) {
	var withdrawn models.Amount
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		if err := lockForUpdate(tx).Where("id = ?", questID).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestNotFound
			}
			return err
		}

		if quest.Creator != caller {
			return ErrUnauthorized
		}
		if !quest.Status.IsTerminal() {
			return ErrQuestStillActive
		}

		var account models.EscrowAccount
		if err := s.loadAccountForUpdate(tx, questID, &account); err != nil {
			return err
		}
		if !account.Balance.IsPositive() {
			return ErrNoEscrowBalance
		}

		withdrawn = account.Balance
		if err := s.Ledger.Transfer(ctx, quest.RewardAsset, CustodyAccount, caller, withdrawn); err != nil {
			return err
		}

		account.Balance = models.NewAmount(0)
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventEscrowWithdrawn, questID, caller, map[string]interface{}{
			"amount": withdrawn,
		})
	})
	if err != nil {
		return models.Amount{}, err
	}

	log.Printf("🏧 Escrow withdrawal: quest=%s → %s returned to %s", questID, withdrawn.String(), caller)
	return withdrawn, nil
}

// loadAccountForUpdate fetches (or lazily creates at zero) the quest's
// escrow account with a row lock.
func (s *EscrowService) loadAccountForUpdate(tx *gorm.DB, questID string, account *models.EscrowAccount) error {
	err := lockForUpdate(tx).Where("quest_id = ?", questID).First(account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		*account = models.EscrowAccount{QuestID: questID, Balance: models.NewAmount(0)}
		return tx.Create(account).Error
	}
	return err
}
