package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memNotifications struct {
	rows []models.Notification
	err  error
}

func (m memNotifications) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Notification
	for _, n := range m.rows {
		for _, id := range ids {
			if n.ID == id {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

type memUsers map[uuid.UUID]*models.User

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

type recordingPusher struct {
	mu       sync.Mutex
	payloads []PushPayload
}

func (p *recordingPusher) SendPushToUser(_ context.Context, _ uuid.UUID, payload PushPayload) PushResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return PushResult{Sent: 1}
}

type recordingEmailer struct {
	to []string
}

func (e *recordingEmailer) Send(_ context.Context, _, toEmail, _, _ string) error {
	e.to = append(e.to, toEmail)
	return nil
}

type recordingFeed struct {
	users []uuid.UUID
}

func (f *recordingFeed) SendToUser(userID uuid.UUID, _ any) int {
	f.users = append(f.users, userID)
	return 1
}

func TestDeliver_FansOutPerChannel(t *testing.T) {
	worker, client := uuid.New(), uuid.New()
	url := "/bookings/42"
	payment := models.Notification{ID: uuid.New(), UserID: worker, Type: models.NotifPaymentReceived, Title: "Payment received", URL: &url}
	update := models.Notification{ID: uuid.New(), UserID: client, Type: models.NotifBookingUpdated, Title: "Booking updated"}
	users := memUsers{worker: {ID: worker, Email: "worker@example.com"}, client: {ID: client, Email: "client@example.com"}}
	pusher, emailer, feed := &recordingPusher{}, &recordingEmailer{}, &recordingFeed{}

	d := NewDeliverer(memNotifications{rows: []models.Notification{payment, update}}, users, pusher, emailer, feed)
	require.NoError(t, d.Deliver(context.Background(), []uuid.UUID{payment.ID, update.ID}))

	assert.Equal(t, []uuid.UUID{worker, client}, feed.users)
	require.Len(t, pusher.payloads, 2)
	assert.Equal(t, "/bookings/42", pusher.payloads[0].URL)
	assert.Equal(t, "payment_received", pusher.payloads[0].Tag)
	assert.Equal(t, []string{"worker@example.com"}, emailer.to, "booking updates are not emailed")
}

func TestDeliver_LoadFailureIsRetryable(t *testing.T) {
	d := NewDeliverer(memNotifications{err: errors.New("db down")}, memUsers{}, nil, nil, nil)
	assert.Error(t, d.Deliver(context.Background(), []uuid.UUID{uuid.New()}))
	assert.NoError(t, d.Deliver(context.Background(), nil))
}

func TestBrevoSend(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewEmailService("brevo-key", "noreply@domestiq.co.za", "DomestIQ", srv.URL)
	require.NotNil(t, svc)
	require.NoError(t, svc.Send(context.Background(), "", "thandi@example.com", "Hello", "<p>Hi</p>"))
	assert.Equal(t, "brevo-key", gotKey)

	assert.Error(t, svc.Send(context.Background(), "", "not-an-email", "Hello", ""))
}

func TestBrevoSend_Unconfigured(t *testing.T) {
	svc := NewEmailService("", "", "", "")
	assert.Nil(t, svc)
	assert.NoError(t, svc.Send(context.Background(), "x", "x@example.com", "s", "b"))
}
