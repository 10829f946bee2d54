package models

import "time"

// CustodyMirror mirrors custody-account balances from the ledger service.
// Table name: custody_mirror. Observability only: no core invariant reads it.
type CustodyMirror struct {
	ID           string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	Asset        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"asset"`
	Account      string    `gorm:"type:varchar(128);not null" json:"account"`
	Balance      Amount    `gorm:"not null" json:"balance"`
	LastSyncedAt time.Time `gorm:"not null" json:"last_synced_at"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (CustodyMirror) TableName() string { return "custody_mirror" }
