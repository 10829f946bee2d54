package models

// EscrowAccount holds the per-quest reward funds in the service's custody.
// One account per quest, implicitly created at zero on first deposit.
// Balance only increases via deposit and only decreases via payout debit or
// the creator's terminal withdrawal, which drains it to exactly zero.
type EscrowAccount struct {
	QuestID string `gorm:"primaryKey;size:64" json:"quest_id"`
	Balance Amount `gorm:"not null" json:"balance"`

	Timestamps
}
