package models

import "time"

// Event topics, mirroring the operations that emit them
const (
	EventQuestRegistered    = "quest_registered"
	EventQuestStatusUpdated = "quest_status_updated"
	EventEscrowDeposited    = "escrow_deposited"
	EventEscrowPaidOut      = "escrow_paid_out"
	EventEscrowWithdrawn    = "escrow_withdrawn"
	EventProofSubmitted     = "proof_submitted"
	EventSubmissionApproved = "submission_approved"
	EventSubmissionRejected = "submission_rejected"
	EventXPAwarded          = "xp_awarded"
	EventBadgeGranted       = "badge_granted"
	EventUpgradeAuthorized  = "upgrade_authorized"
)

// QuestEvent is the fire-and-forget event log. Rows are written in the same
// transaction as the state change they describe and are never read back by
// the core.
type QuestEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Topic     string    `gorm:"not null;index" json:"topic"`
	QuestID   string    `gorm:"index" json:"quest_id,omitempty"`
	Actor     string    `gorm:"index" json:"actor,omitempty"`
	Payload   string    `gorm:"type:text" json:"payload,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
