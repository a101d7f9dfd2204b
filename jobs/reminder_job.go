package jobs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type Reminder interface {
	SendReminders(ctx context.Context, from, to time.Time) (int, error)
}

// BookingReminders notifies both parties of confirmed bookings starting roughly an hour from
// now. The window matches the five minute schedule so each booking is reminded once.
func BookingReminders(r Reminder, now func() time.Time) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		at := now()
		sent, err := r.SendReminders(ctx, at.Add(60*time.Minute), at.Add(65*time.Minute))
		if err != nil {
			log.WithError(err).Error("Error checking for upcoming bookings")
			return
		}
		if sent > 0 {
			log.WithField("bookings", sent).Info("Sent booking reminders")
		}
	}
}
