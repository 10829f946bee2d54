package models

// ConfigVersion is the current service configuration version, stored at
// initialization and bumped by upgrades (performed externally).
const ConfigVersion uint32 = 1

// ServiceConfig is the singleton admin/config record. Exactly one row,
// created once by initialize. The uninitialized state is the absence of the
// row combined with Initialized=false defaults, enforced by the config
// service, never by presence sentinels in callers.
type ServiceConfig struct {
	ID          uint32 `gorm:"primaryKey" json:"-"`
	Admin       string `gorm:"not null" json:"admin"`
	Version     uint32 `gorm:"not null" json:"version"`
	Initialized bool   `gorm:"not null;default:false" json:"initialized"`

	Timestamps
}

// ConfigRowID: the singleton always lives at id 1.
const ConfigRowID uint32 = 1
