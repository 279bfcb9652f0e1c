package jobs

import (
	"log"
	"time"

	"github.com/harukim/task-tracker-api/internal/repository"
	"github.com/robfig/cron/v3"
)

// StartTokenCleanup schedules an hourly purge of expired access tokens and
// returns the running scheduler.
func StartTokenCleanup(tokenRepo repository.TokenRepository) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("@hourly", func() {
		removed, err := tokenRepo.DeleteExpired(time.Now())
		if err != nil {
			log.Printf("Token cleanup failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("Token cleanup removed %d expired tokens", removed)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule token cleanup: %v", err)
	}

	c.Start()
	return c
}
