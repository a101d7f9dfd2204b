package jobs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type StatementGenerator interface {
	GeneratePreviousMonth(ctx context.Context) (int, error)
}

func MonthlyStatements(g StatementGenerator) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		n, err := g.GeneratePreviousMonth(ctx)
		if err != nil {
			log.WithError(err).Error("Error generating monthly income statements")
			return
		}
		log.WithField("statements", n).Info("Generated monthly income statements")
	}
}
