// Package jobs holds the periodic background work run by cron.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type Jobs struct {
	Reminder   Reminder
	Expirer    StaleExpirer
	Relay      OutboxRelay
	Statements StatementGenerator
}

type entry struct {
	spec string
	job  func()
}

// Schedule registers every configured job on a seconds-resolution cron in loc.
// The caller starts and stops it.
func Schedule(j Jobs, loc *time.Location) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithSeconds())

	var entries []entry
	if j.Relay != nil {
		entries = append(entries, entry{"*/5 * * * * *", RelayOutbox(j.Relay)})
	}
	if j.Reminder != nil {
		entries = append(entries, entry{"0 */5 * * * *", BookingReminders(j.Reminder, time.Now)})
	}
	if j.Expirer != nil {
		entries = append(entries, entry{"0 15 * * * *", ExpireStaleTransactions(j.Expirer)})
	}
	if j.Statements != nil {
		// 02:00 on the first of the month
		entries = append(entries, entry{"0 0 2 1 * *", MonthlyStatements(j.Statements)})
	}

	for _, e := range entries {
		if _, err := c.AddFunc(e.spec, e.job); err != nil {
			return nil, fmt.Errorf("schedule %q: %w", e.spec, err)
		}
	}
	return c, nil
}
