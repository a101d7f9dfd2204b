package jobs

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

type OutboxRelay interface {
	RunOnce(ctx context.Context) (int, error)
}

// RelayOutbox drains one outbox batch. Overlapping runs are skipped.
func RelayOutbox(r OutboxRelay) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			return
		}
		defer running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := r.RunOnce(ctx)
		if err != nil {
			log.WithError(err).Error("Error relaying outbox events")
			return
		}
		if n > 0 {
			log.WithField("events", n).Debug("Relayed outbox events")
		}
	}
}
