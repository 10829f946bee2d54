package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Badge tags awarded automatically on level milestones (see services
// reputation policy) or granted directly by the admin.
const (
	BadgeRookie   = "rookie"
	BadgeExplorer = "explorer"
	BadgeVeteran  = "veteran"
	BadgeMaster   = "master"
	BadgeLegend   = "legend"
)

// BadgeList is a duplicate-free set of badge tags, JSON-encoded at rest.
type BadgeList []string

func (b BadgeList) Contains(badge string) bool {
	for _, have := range b {
		if have == badge {
			return true
		}
	}
	return false
}

func (BadgeList) GormDataType() string { return "text" }

func (b BadgeList) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(b))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (b *BadgeList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*b = BadgeList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into BadgeList", src)
	}
	if len(raw) == 0 {
		*b = BadgeList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(b))
}

// UserStats tracks reputation for each participant (lazily created on first
// XP award or badge grant, mutated additively only).
type UserStats struct {
	Address         string    `gorm:"primaryKey" json:"address"`
	TotalXP         uint64    `gorm:"not null;default:0" json:"total_xp"`
	Level           uint32    `gorm:"not null;default:1" json:"level"`
	QuestsCompleted uint32    `gorm:"not null;default:0" json:"quests_completed"`
	Badges          BadgeList `gorm:"not null" json:"badges"`

	Timestamps
}
