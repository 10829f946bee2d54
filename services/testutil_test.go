package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"quest-bounty-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Quest{},
		&models.Submission{},
		&models.EscrowAccount{},
		&models.UserStats{},
		&models.ServiceConfig{},
		&models.QuestEvent{},
		&models.CustodyMirror{},
	))
	return db
}

// transferCall records one movement through the fake ledger.
type transferCall struct {
	Asset  string
	From   string
	To     string
	Amount models.Amount
}

// fakeLedger is an in-process stand-in for the custody ledger service.
type fakeLedger struct {
	mu        sync.Mutex
	Transfers []transferCall
	FailNext  error
}

func (f *fakeLedger) Transfer(_ context.Context, asset, from, to string, amount models.Amount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNext != nil {
		err := f.FailNext
		f.FailNext = nil
		return err
	}
	f.Transfers = append(f.Transfers, transferCall{Asset: asset, From: from, To: to, Amount: amount})
	return nil
}

func (f *fakeLedger) GetBalance(context.Context, string, string) (models.Amount, error) {
	return models.NewAmount(0), nil
}

func (f *fakeLedger) lastTransfer(t *testing.T) transferCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.Transfers)
	return f.Transfers[len(f.Transfers)-1]
}

// testClock is a settable time source shared by every service in a fixture.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(at time.Time) *testClock { return &testClock{now: at} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixture wires the full service graph against one test database.
type fixture struct {
	DB          *gorm.DB
	Clock       *testClock
	Ledger      *fakeLedger
	Config      *ConfigService
	Quests      *QuestService
	Escrow      *EscrowService
	Reputation  *ReputationService
	Submissions *SubmissionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	clock := newTestClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ledger := &fakeLedger{}

	config := NewConfigService(db)
	quests := NewQuestService(db)
	escrow := NewEscrowService(db, ledger)
	reputation := NewReputationService(db, config)
	submissions := NewSubmissionService(db, quests, escrow, reputation)

	quests.Now = clock.Now
	submissions.Now = clock.Now

	return &fixture{
		DB:          db,
		Clock:       clock,
		Ledger:      ledger,
		Config:      config,
		Quests:      quests,
		Escrow:      escrow,
		Reputation:  reputation,
		Submissions: submissions,
	}
}

// registerQuest is the default happy-path quest used across tests.
func (f *fixture) registerQuest(t *testing.T, id string, reward int64, maxParticipants uint32) *models.Quest {
	t.Helper()
	quest, err := f.Quests.RegisterQuest("creator-1", RegisterQuestRequest{
		ID:              id,
		RewardAsset:     "USDC",
		RewardAmount:    models.NewAmount(reward),
		Verifier:        "verifier-1",
		Deadline:        f.Clock.Now().Add(24 * time.Hour),
		MaxParticipants: maxParticipants,
	})
	require.NoError(t, err)
	return quest
}

// proofHash builds a deterministic non-zero hash for tests.
func proofHash(b byte) models.ProofHash {
	var h models.ProofHash
	for i := range h {
		h[i] = b
	}
	return h
}
