package models

import (
	"time"
)

// QuestStatus is the lifecycle state of a quest
type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusPaused    QuestStatus = "paused"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusExpired   QuestStatus = "expired"
	QuestStatusCancelled QuestStatus = "cancelled"
)

// Quest is a funded bounty: the creator escrows reward_amount per approved
// submission, the verifier decides approvals, and the deadline bounds the
// submission window.
type Quest struct {
	// Caller-chosen short identifier, unique across all quests
	ID              string      `gorm:"primaryKey;size:64" json:"id"`
	Creator         string      `gorm:"not null;index" json:"creator"`
	RewardAsset     string      `gorm:"not null" json:"reward_asset"`
	RewardAmount    Amount      `gorm:"not null" json:"reward_amount"`
	Verifier        string      `gorm:"not null" json:"verifier"`
	Deadline        time.Time   `gorm:"not null" json:"deadline"`
	Status          QuestStatus `gorm:"not null;default:'active';index" json:"status"`
	MaxParticipants uint32      `gorm:"not null" json:"max_participants"`
	TotalClaims     uint32      `gorm:"not null;default:0" json:"total_claims"`

	Timestamps
}

// IsFull reports whether the claim cap has been reached.
func (q *Quest) IsFull() bool {
	return q.TotalClaims >= q.MaxParticipants
}

// IsExpired is strict: the deadline instant itself still accepts submissions.
func (q *Quest) IsExpired(now time.Time) bool {
	return now.After(q.Deadline)
}

// IsTerminal reports whether the quest can never change status again.
func (s QuestStatus) IsTerminal() bool {
	switch s {
	case QuestStatusCompleted, QuestStatusExpired, QuestStatusCancelled:
		return true
	}
	return false
}

// ValidQuestTransition is the full status transition table. Terminal states
// have no exits and same-state transitions are invalid.
func ValidQuestTransition(current, next QuestStatus) bool {
	switch current {
	case QuestStatusActive:
		switch next {
		case QuestStatusPaused, QuestStatusCompleted, QuestStatusExpired, QuestStatusCancelled:
			return true
		}
	case QuestStatusPaused:
		switch next {
		case QuestStatusActive, QuestStatusExpired:
			return true
		}
	}
	return false
}

// ValidQuestStatus reports whether s is one of the known status values.
func ValidQuestStatus(s QuestStatus) bool {
	switch s {
	case QuestStatusActive, QuestStatusPaused, QuestStatusCompleted, QuestStatusExpired, QuestStatusCancelled:
		return true
	}
	return false
}
