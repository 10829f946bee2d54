package services

import (
	"errors"
	"log"

	"quest-bounty-system/models"

	"gorm.io/gorm"
)

type ConfigService struct {
	DB *gorm.DB
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{DB: db}
}

// Initialize stores the singleton config exactly once. Every later call
// fails, whoever makes it.
func (s *ConfigService) Initialize(admin string) (*models.ServiceConfig, error) {
	var config models.ServiceConfig
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.ServiceConfig
		err := lockForUpdate(tx).Where("id = ?", models.ConfigRowID).First(&existing).Error
		if err == nil {
			return ErrAlreadyInitialized
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		config = models.ServiceConfig{
			ID:          models.ConfigRowID,
			Admin:       admin,
			Version:     models.ConfigVersion,
			Initialized: true,
		}
		return tx.Create(&config).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔧 Service initialized: admin=%s version=%d", admin, config.Version)
	return &config, nil
}

// GetConfig returns the singleton config.
func (s *ConfigService) GetConfig() (*models.ServiceConfig, error) {
	return s.getConfigTx(s.DB)
}

func (s *ConfigService) getConfigTx(tx *gorm.DB) (*models.ServiceConfig, error) {
	var config models.ServiceConfig
	err := tx.Where("id = ?", models.ConfigRowID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	if !config.Initialized {
		return nil, ErrNotInitialized
	}
	return &config, nil
}

// UpdateConfig rotates the admin. Only the current admin may call it; a nil
// newAdmin leaves the config untouched.
func (s *ConfigService) UpdateConfig(caller string, newAdmin *string) (*models.ServiceConfig, error) {
	var config *models.ServiceConfig
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		config, err = s.getConfigTx(tx)
		if err != nil {
			return err
		}
		if config.Admin != caller {
			return ErrUnauthorized
		}

		if newAdmin != nil {
			config.Admin = *newAdmin
			if err := tx.Save(config).Error; err != nil {
				return err
			}
			log.Printf("🔧 Admin rotated: %s → %s", caller, *newAdmin)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// AuthorizeUpgrade verifies that the caller may upgrade the service. It only
// signals approval — the code replacement itself is the host runtime's job.
func (s *ConfigService) AuthorizeUpgrade(caller string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		config, err := s.getConfigTx(tx)
		if err != nil {
			return err
		}
		if config.Admin != caller {
			return ErrUnauthorizedUpgrade
		}
		return recordEvent(tx, models.EventUpgradeAuthorized, "", caller, map[string]interface{}{
			"version": config.Version,
		})
	})
}
