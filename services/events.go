package services

import (
	"encoding/json"
	"log"

	"quest-bounty-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordEvent writes a QuestEvent row on the given transaction and logs it.
// Events are fire-and-forget: the payload is best-effort JSON and the core
// never reads the table back.
func recordEvent(tx *gorm.DB, topic, questID, actor string, payload interface{}) error {
	var encoded string
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Printf("⚠️ event payload for %s not serializable: %v", topic, err)
		} else {
			encoded = string(raw)
		}
	}

	event := models.QuestEvent{
		ID:      uuid.NewString(),
		Topic:   topic,
		QuestID: questID,
		Actor:   actor,
		Payload: encoded,
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}

	log.Printf("📣 [EVENT] %s quest=%s actor=%s %s", topic, questID, actor, encoded)
	return nil
}
