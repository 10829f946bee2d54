package services

import (
	"context"
	"errors"
	"testing"

	"quest-bounty-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)
	ctx := context.Background()

	account, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(1500))
	require.NoError(t, err)
	assert.Equal(t, 0, account.Balance.Cmp(models.NewAmount(1500)))

	// the tokens moved from the creator into custody
	call := f.Ledger.lastTransfer(t)
	assert.Equal(t, "USDC", call.Asset)
	assert.Equal(t, "creator-1", call.From)
	assert.Equal(t, CustodyAccount, call.To)

	// deposits are additive
	account, err = f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(500))
	require.NoError(t, err)
	assert.Equal(t, 0, account.Balance.Cmp(models.NewAmount(2000)))
}

func TestDepositValidation(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)
	ctx := context.Background()

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(0))
	assert.ErrorIs(t, err, ErrInvalidEscrowAmount)

	_, err = f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(-100))
	assert.ErrorIs(t, err, ErrInvalidEscrowAmount)

	_, err = f.Escrow.Deposit(ctx, "quest-1", "not-the-creator", models.NewAmount(100))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.Escrow.Deposit(ctx, "missing", "creator-1", models.NewAmount(100))
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestDepositAllowedWhilePaused(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)
	ctx := context.Background()

	_, err := f.Quests.PauseQuest("quest-1", "creator-1")
	require.NoError(t, err)

	_, err = f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(100))
	assert.NoError(t, err)
}

func TestDepositRefusedAfterTerminal(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)
	ctx := context.Background()

	_, err := f.Quests.CancelQuest("quest-1", "creator-1")
	require.NoError(t, err)

	_, err = f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(100))
	assert.ErrorIs(t, err, ErrQuestNotActive)
}

func TestDepositTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)
	ctx := context.Background()

	f.Ledger.FailNext = errors.New("ledger unavailable")
	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(100))
	require.Error(t, err)

	balance, err := f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestGetBalanceImplicitAccount(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)

	balance, err := f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestWithdrawUnclaimed(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)
	ctx := context.Background()

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(2000))
	require.NoError(t, err)

	// still active: locked
	_, err = f.Escrow.WithdrawUnclaimed(ctx, "quest-1", "creator-1")
	assert.ErrorIs(t, err, ErrQuestStillActive)

	_, err = f.Quests.CancelQuest("quest-1", "creator-1")
	require.NoError(t, err)

	_, err = f.Escrow.WithdrawUnclaimed(ctx, "quest-1", "not-the-creator")
	assert.ErrorIs(t, err, ErrUnauthorized)

	withdrawn, err := f.Escrow.WithdrawUnclaimed(ctx, "quest-1", "creator-1")
	require.NoError(t, err)
	assert.Equal(t, 0, withdrawn.Cmp(models.NewAmount(2000)))

	call := f.Ledger.lastTransfer(t)
	assert.Equal(t, CustodyAccount, call.From)
	assert.Equal(t, "creator-1", call.To)

	balance, err := f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	// withdrawal drains to exactly zero — a second call finds nothing
	_, err = f.Escrow.WithdrawUnclaimed(ctx, "quest-1", "creator-1")
	assert.ErrorIs(t, err, ErrNoEscrowBalance)
}

func TestWithdrawWithNoBalance(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)
	ctx := context.Background()

	_, err := f.Quests.ExpireQuest("quest-1", "creator-1")
	require.NoError(t, err)

	_, err = f.Escrow.WithdrawUnclaimed(ctx, "quest-1", "creator-1")
	assert.ErrorIs(t, err, ErrNoEscrowBalance)
}
