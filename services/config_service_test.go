package services

import (
	"testing"

	"quest-bounty-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeOnce(t *testing.T) {
	f := newFixture(t)

	config, err := f.Config.Initialize("admin-1")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", config.Admin)
	assert.Equal(t, uint32(models.ConfigVersion), config.Version)
	assert.True(t, config.Initialized)

	_, err = f.Config.Initialize("admin-2")
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	// the original admin survives the failed re-init
	config, err = f.Config.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "admin-1", config.Admin)
}

func TestGetConfigBeforeInit(t *testing.T) {
	f := newFixture(t)
	_, err := f.Config.GetConfig()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestUpdateConfigRotatesAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.Config.Initialize("admin-1")
	require.NoError(t, err)

	newAdmin := "admin-2"
	config, err := f.Config.UpdateConfig("admin-1", &newAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin-2", config.Admin)

	// the old admin has no power left
	_, err = f.Config.UpdateConfig("admin-1", &newAdmin)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// a nil newAdmin is a no-op
	config, err = f.Config.UpdateConfig("admin-2", nil)
	require.NoError(t, err)
	assert.Equal(t, "admin-2", config.Admin)
}

func TestAuthorizeUpgrade(t *testing.T) {
	f := newFixture(t)

	err := f.Config.AuthorizeUpgrade("admin-1")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = f.Config.Initialize("admin-1")
	require.NoError(t, err)

	assert.NoError(t, f.Config.AuthorizeUpgrade("admin-1"))
	assert.ErrorIs(t, f.Config.AuthorizeUpgrade("intruder"), ErrUnauthorizedUpgrade)

	var events []models.QuestEvent
	require.NoError(t, f.DB.Where("topic = ?", models.EventUpgradeAuthorized).Find(&events).Error)
	assert.Len(t, events, 1)
}
