package workers

import (
	"context"
	"log"
	"time"

	"quest-bounty-system/models"
	"quest-bounty-system/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustodySyncClient mirrors custody-account balances from the ledger service
// into the custody_mirror table. Observability only — no quest or escrow
// state transition reads the mirror.
type CustodySyncClient struct {
	Ledger services.TokenLedger
	DB     *gorm.DB
}

func NewCustodySyncClient(db *gorm.DB, ledger services.TokenLedger) *CustodySyncClient {
	return &CustodySyncClient{Ledger: ledger, DB: db}
}

// escrowedAssets lists the distinct reward assets with an open escrow
// account, so the poller only queries balances that matter.
func (c *CustodySyncClient) escrowedAssets() ([]string, error) {
	var assets []string
	err := c.DB.Model(&models.Quest{}).
		Distinct("reward_asset").
		Joins("JOIN escrow_accounts ON escrow_accounts.quest_id = quests.id").
		Pluck("reward_asset", &assets).Error
	return assets, err
}

// PollCustodyBalances refreshes the mirror on a fixed interval until ctx is
// cancelled.
func PollCustodyBalances(ctx context.Context, client *CustodySyncClient, pollInterval time.Duration) {
	log.Println("Starting custody balance polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Custody balance polling stopped.")
			return
		case <-ticker.C:
			assets, err := client.escrowedAssets()
			if err != nil {
				log.Printf("❌ Error listing escrowed assets: %v", err)
				continue
			}
			if len(assets) == 0 {
				continue
			}

			now := time.Now().UTC()
			mirrors := make([]models.CustodyMirror, 0, len(assets))
			for _, asset := range assets {
				balance, err := client.Ledger.GetBalance(ctx, asset, services.CustodyAccount)
				if err != nil {
					log.Printf("❌ Error reading custody balance for %s: %v", asset, err)
					continue
				}
				mirrors = append(mirrors, models.CustodyMirror{
					ID:           uuid.NewString(),
					Asset:        asset,
					Account:      services.CustodyAccount,
					Balance:      balance,
					LastSyncedAt: now,
					CreatedAt:    now,
					UpdatedAt:    now,
				})
			}
			if len(mirrors) == 0 {
				continue
			}

			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "asset"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"account",
						"balance",
						"last_synced_at",
						"updated_at",
					}),
				},
			).Create(&mirrors).Error; err != nil {
				log.Printf("❌ Failed to upsert %d custody mirror row(s): %v", len(mirrors), err)
				continue
			}

			log.Printf("📥 Refreshed custody mirror for %d asset(s).", len(mirrors))
		}
	}
}
