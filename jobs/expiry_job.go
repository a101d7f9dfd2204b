package jobs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	StaleTransactionAge = 24 * time.Hour
	staleBatch          = 100
)

type StaleExpirer interface {
	ExpireStale(ctx context.Context, maxAge time.Duration, limit int) (int, error)
}

// ExpireStaleTransactions reconciles pending charges the processor never called back about.
func ExpireStaleTransactions(e StaleExpirer) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		expired, err := e.ExpireStale(ctx, StaleTransactionAge, staleBatch)
		if err != nil {
			log.WithError(err).Error("Error expiring stale transactions")
			return
		}
		if expired > 0 {
			log.WithField("transactions", expired).Info("Marked stale transaction(s) as abandoned")
		}
	}
}
