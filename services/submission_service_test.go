package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"quest-bounty-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitProof(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)

	submission, err := f.Submissions.SubmitProof("quest-1", "alice", proofHash(0xAB), "")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPending, submission.Status)
	assert.Equal(t, f.Clock.Now(), submission.SubmittedAt)

	fetched, err := f.Submissions.GetSubmission("quest-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, proofHash(0xAB), fetched.ProofHash)
}

func TestSubmitProofValidation(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 2)

	t.Run("unknown quest", func(t *testing.T) {
		_, err := f.Submissions.SubmitProof("missing", "alice", proofHash(1), "")
		assert.ErrorIs(t, err, ErrQuestNotFound)
	})

	t.Run("zero proof hash", func(t *testing.T) {
		_, err := f.Submissions.SubmitProof("quest-1", "alice", models.ProofHash{}, "")
		assert.ErrorIs(t, err, ErrInvalidProofHash)
	})

	t.Run("duplicate submission", func(t *testing.T) {
		_, err := f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
		require.NoError(t, err)
		_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(2), "")
		assert.ErrorIs(t, err, ErrSubmissionAlreadyExists)
	})

	t.Run("paused quest", func(t *testing.T) {
		_, err := f.Quests.PauseQuest("quest-1", "creator-1")
		require.NoError(t, err)
		_, err = f.Submissions.SubmitProof("quest-1", "bob", proofHash(3), "")
		assert.ErrorIs(t, err, ErrQuestNotActive)
	})
}

func TestSubmitProofDeadline(t *testing.T) {
	f := newFixture(t)
	deadline := f.Clock.Now().Add(100 * time.Second)
	_, err := f.Quests.RegisterQuest("creator-1", RegisterQuestRequest{
		ID:              "quest-1",
		RewardAsset:     "USDC",
		RewardAmount:    models.NewAmount(10),
		Verifier:        "verifier-1",
		Deadline:        deadline,
		MaxParticipants: 5,
	})
	require.NoError(t, err)

	// submitting exactly at the deadline succeeds
	f.Clock.Advance(100 * time.Second)
	_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	assert.NoError(t, err)

	// one second past, the quest lazily expires and the submission fails
	f.Clock.Advance(time.Second)
	_, err = f.Submissions.SubmitProof("quest-1", "bob", proofHash(2), "")
	assert.ErrorIs(t, err, ErrQuestNotActive)

	quest, err := f.Quests.GetQuest("quest-1")
	require.NoError(t, err)
	assert.Equal(t, models.QuestStatusExpired, quest.Status)
}

// Full happy path: two-slot quest funded with exactly two rewards, drained
// by two approvals, auto-completed, then closed to newcomers.
func TestApproveAndPayoutScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerQuest(t, "quest-1", 1000, 2)

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(2000))
	require.NoError(t, err)

	// submitter A
	_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)
	submission, err := f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPaid, submission.Status)

	balance, err := f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(models.NewAmount(1000)))

	stats, err := f.Reputation.GetUserStats("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), stats.TotalXP)
	assert.Equal(t, uint32(1), stats.QuestsCompleted)

	call := f.Ledger.lastTransfer(t)
	assert.Equal(t, CustodyAccount, call.From)
	assert.Equal(t, "alice", call.To)
	assert.Equal(t, 0, call.Amount.Cmp(models.NewAmount(1000)))

	quest, err := f.Quests.GetQuest("quest-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), quest.TotalClaims)
	assert.Equal(t, models.QuestStatusActive, quest.Status)

	// submitter B fills the quest
	_, err = f.Submissions.SubmitProof("quest-1", "bob", proofHash(2), "")
	require.NoError(t, err)
	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "bob", "verifier-1")
	require.NoError(t, err)

	balance, err = f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	quest, err = f.Quests.GetQuest("quest-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), quest.TotalClaims)
	assert.Equal(t, models.QuestStatusCompleted, quest.Status)

	// a third submission is refused — the quest is no longer active
	_, err = f.Submissions.SubmitProof("quest-1", "carol", proofHash(3), "")
	assert.ErrorIs(t, err, ErrQuestNotActive)
}

func TestApproveAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerQuest(t, "quest-1", 1000, 2)

	_, err := f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)

	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "not-the-verifier")
	assert.ErrorIs(t, err, ErrUnauthorizedVerifier)

	_, err = f.Submissions.RejectSubmission("quest-1", "alice", "creator-1")
	assert.ErrorIs(t, err, ErrUnauthorizedVerifier)
}

func TestApproveTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerQuest(t, "quest-1", 1000, 2)

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(2000))
	require.NoError(t, err)
	_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)

	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	require.NoError(t, err)

	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	assert.ErrorIs(t, err, ErrSubmissionAlreadyProcessed)

	_, err = f.Submissions.RejectSubmission("quest-1", "alice", "verifier-1")
	assert.ErrorIs(t, err, ErrSubmissionAlreadyProcessed)
}

func TestRejectSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerQuest(t, "quest-1", 1000, 2)

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(2000))
	require.NoError(t, err)
	_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)

	submission, err := f.Submissions.RejectSubmission("quest-1", "alice", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusRejected, submission.Status)

	// no escrow or reputation effect
	balance, err := f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(models.NewAmount(2000)))

	stats, err := f.Reputation.GetUserStats("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.TotalXP)

	// rejection is terminal
	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	assert.ErrorIs(t, err, ErrSubmissionAlreadyProcessed)
}

func TestApproveWithInsufficientEscrowRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerQuest(t, "quest-1", 1000, 2)

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(500))
	require.NoError(t, err)
	_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)

	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	assert.ErrorIs(t, err, ErrInsufficientEscrow)

	// the whole approval rolled back: still pending, no claim counted, no XP
	submission, err := f.Submissions.GetSubmission("quest-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPending, submission.Status)

	quest, err := f.Quests.GetQuest("quest-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), quest.TotalClaims)

	stats, err := f.Reputation.GetUserStats("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.TotalXP)

	balance, err := f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(models.NewAmount(500)))
}

func TestApprovePayoutTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerQuest(t, "quest-1", 1000, 2)

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(2000))
	require.NoError(t, err)
	_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)

	// escrow is sufficient; the custody-to-submitter transfer itself fails
	f.Ledger.FailNext = errors.New("ledger unavailable")
	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	require.Error(t, err)

	submission, err := f.Submissions.GetSubmission("quest-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPending, submission.Status)

	quest, err := f.Quests.GetQuest("quest-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), quest.TotalClaims)
	assert.Equal(t, models.QuestStatusActive, quest.Status)

	balance, err := f.Escrow.GetBalance("quest-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(models.NewAmount(2000)))

	stats, err := f.Reputation.GetUserStats("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.TotalXP)

	// a later retry succeeds once the ledger recovers
	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	require.NoError(t, err)
}

func TestApproveRefusedWhenQuestFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerQuest(t, "quest-1", 1000, 1)

	_, err := f.Escrow.Deposit(ctx, "quest-1", "creator-1", models.NewAmount(2000))
	require.NoError(t, err)

	_, err = f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)
	_, err = f.Submissions.SubmitProof("quest-1", "bob", proofHash(2), "")
	require.NoError(t, err)

	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "alice", "verifier-1")
	require.NoError(t, err)

	// bob submitted before the cap was hit, but may no longer be approved
	_, err = f.Submissions.ApproveSubmission(ctx, "quest-1", "bob", "verifier-1")
	assert.ErrorIs(t, err, ErrQuestFull)

	full, err := f.Quests.IsQuestFull("quest-1")
	require.NoError(t, err)
	assert.True(t, full)
}

func TestListSubmissions(t *testing.T) {
	f := newFixture(t)
	f.registerQuest(t, "quest-1", 1000, 5)
	f.registerQuest(t, "quest-2", 500, 5)

	_, err := f.Submissions.SubmitProof("quest-1", "alice", proofHash(1), "")
	require.NoError(t, err)
	_, err = f.Submissions.SubmitProof("quest-1", "bob", proofHash(2), "")
	require.NoError(t, err)
	_, err = f.Submissions.SubmitProof("quest-2", "alice", proofHash(3), "")
	require.NoError(t, err)

	byQuest, err := f.Submissions.ListQuestSubmissions("quest-1")
	require.NoError(t, err)
	assert.Len(t, byQuest, 2)

	_, err = f.Submissions.ListQuestSubmissions("missing")
	assert.ErrorIs(t, err, ErrQuestNotFound)

	byUser, err := f.Submissions.ListUserSubmissions("alice")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	_, err = f.Submissions.GetSubmission("quest-2", "bob")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}
