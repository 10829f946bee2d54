// services/reconciler.go
package services

import (
	"log"
	"time"

	"quest-bounty-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartReconciler runs a periodic check that the escrowed totals recorded
// here are covered by the custody balances mirrored from the ledger service.
// Discrepancies are logged only; no state transition ever depends on this
// job, and it never touches quest deadlines.
func (s *EscrowService) StartReconciler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var accounts []models.EscrowAccount
			if err := s.DB.Find(&accounts).Error; err != nil {
				log.Printf("[Reconciler] DB error loading escrow accounts: %v", err)
				return
			}

			totals := map[string]models.Amount{}
			for _, acct := range accounts {
				var quest models.Quest
				if err := s.DB.Select("reward_asset").Where("id = ?", acct.QuestID).First(&quest).Error; err != nil {
					log.Printf("[Reconciler] quest %s missing for escrow account: %v", acct.QuestID, err)
					continue
				}
				totals[quest.RewardAsset] = totals[quest.RewardAsset].Add(acct.Balance)
			}

			for asset, total := range totals {
				var mirror models.CustodyMirror
				if err := s.DB.Where("asset = ?", asset).First(&mirror).Error; err != nil {
					log.Printf("[Reconciler] no custody mirror for asset %s yet", asset)
					continue
				}
				if mirror.Balance.Cmp(total) < 0 {
					log.Printf("❗ [Reconciler] custody shortfall for %s: escrowed %s, custody holds %s",
						asset, total.String(), mirror.Balance.String())
				}
			}
		}),
	)
}
