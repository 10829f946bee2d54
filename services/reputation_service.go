package services

import (
	"errors"
	"log"

	"quest-bounty-system/models"

	"gorm.io/gorm"
)

// QuestCompletionXP is the fixed award for an approved and paid submission.
const QuestCompletionXP = 100

// Level thresholds: total XP needed to reach each level. A monotonic step
// function; tune here, nowhere else.
var LevelThresholds = []struct {
	Level uint32
	XP    uint64
}{
	{2, 300},
	{3, 600},
	{4, 1000},
	{5, 1500},
}

// CalculateLevel maps total XP onto a level through the threshold table.
func CalculateLevel(totalXP uint64) uint32 {
	level := uint32(1)
	for _, t := range LevelThresholds {
		if totalXP >= t.XP {
			level = t.Level
		}
	}
	return level
}

// BadgeTriggers define badges awarded automatically after an XP update.
// Admin grants through GrantBadge are independent of this table.
var BadgeTriggers = []struct {
	Badge           string
	MinLevel        uint32
	QuestsCompleted uint32
}{
	{Badge: models.BadgeRookie, QuestsCompleted: 1},
	{Badge: models.BadgeExplorer, MinLevel: 2},
	{Badge: models.BadgeVeteran, MinLevel: 3},
	{Badge: models.BadgeMaster, MinLevel: 4},
	{Badge: models.BadgeLegend, MinLevel: 5},
}

type ReputationService struct {
	DB     *gorm.DB
	Config *ConfigService
}

func NewReputationService(db *gorm.DB, config *ConfigService) *ReputationService {
	return &ReputationService{DB: db, Config: config}
}

// AwardXP adds XP to a user's stats, recomputes the level, bumps the
// completed-quest counter and applies automatic badge triggers. Pure
// accrual: stats never decrease and the record is lazily created.
func (s *ReputationService) AwardXP(user string, xp uint64) (*models.UserStats, error) {
	var stats *models.UserStats
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		stats, err = s.awardXPTx(tx, user, xp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// awardXPTx runs the accrual on the caller's transaction, so an aborted
// approval also rolls the XP back.
func (s *ReputationService) awardXPTx(tx *gorm.DB, user string, xp uint64) (*models.UserStats, error) {
	stats, err := s.ensureStatsTx(tx, user)
	if err != nil {
		return nil, err
	}

	oldLevel := stats.Level
	stats.TotalXP += xp
	stats.Level = CalculateLevel(stats.TotalXP)
	stats.QuestsCompleted++

	if err := s.applyBadgeTriggers(stats); err != nil {
		return nil, err
	}

	if err := tx.Save(stats).Error; err != nil {
		return nil, err
	}

	if err := recordEvent(tx, models.EventXPAwarded, "", user, map[string]interface{}{
		"xp":       xp,
		"total_xp": stats.TotalXP,
		"level":    stats.Level,
	}); err != nil {
		return nil, err
	}

	if stats.Level > oldLevel {
		log.Printf("🎮 Level up: %s → level %d (xp %d)", user, stats.Level, stats.TotalXP)
	}
	return stats, nil
}

// GrantBadge adds a badge to a user's set. Admin-only and idempotent: a
// badge already present is a no-op.
func (s *ReputationService) GrantBadge(admin, user, badge string) (*models.UserStats, error) {
	var stats *models.UserStats
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		config, err := s.Config.getConfigTx(tx)
		if err != nil {
			return err
		}
		if config.Admin != admin {
			return ErrUnauthorized
		}

		stats, err = s.ensureStatsTx(tx, user)
		if err != nil {
			return err
		}

		if stats.Badges.Contains(badge) {
			return nil
		}
		stats.Badges = append(stats.Badges, badge)
		if err := tx.Save(stats).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventBadgeGranted, "", user, map[string]interface{}{
			"badge":      badge,
			"granted_by": admin,
		})
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetUserStats returns the user's reputation record, or zero-value defaults
// if the user has never earned anything. The default is not persisted.
func (s *ReputationService) GetUserStats(user string) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.DB.Where("address = ?", user).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserStats{
			Address: user,
			Level:   1,
			Badges:  models.BadgeList{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ReputationService) ensureStatsTx(tx *gorm.DB, user string) (*models.UserStats, error) {
	var stats models.UserStats
	err := lockForUpdate(tx).Where("address = ?", user).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{
			Address: user,
			Level:   1,
			Badges:  models.BadgeList{},
		}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ReputationService) applyBadgeTriggers(stats *models.UserStats) error {
	for _, trigger := range BadgeTriggers {
		if stats.Badges.Contains(trigger.Badge) {
			continue
		}
		if trigger.MinLevel > 0 && stats.Level < trigger.MinLevel {
			continue
		}
		if trigger.QuestsCompleted > 0 && stats.QuestsCompleted < trigger.QuestsCompleted {
			continue
		}
		stats.Badges = append(stats.Badges, trigger.Badge)
		log.Printf("🎖️ Badge earned: %s → %s", trigger.Badge, stats.Address)
	}
	return nil
}
