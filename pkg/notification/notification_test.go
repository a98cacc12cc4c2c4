package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/pkg/mail"
	"github.com/diamantrouge/maison/pkg/notification"
)

type memoryStore struct {
	mu    sync.Mutex
	saved []notification.DatabaseData
}

func (s *memoryStore) SaveNotification(_ context.Context, userID uint, d notification.DatabaseData) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, d)
	return map[string]any{"id": len(s.saved), "userId": userID, "type": d.Type}, nil
}

type mockPusher struct{ mock.Mock }

func (p *mockPusher) SendTo(userID uint, v any) error {
	return p.Called(userID, v).Error(0)
}

type orderUpdate struct {
	webhook string
}

func (orderUpdate) Via() []string {
	return []string{notification.ChannelDatabase, notification.ChannelPush, notification.ChannelMail, notification.ChannelWebhook}
}

func (orderUpdate) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{Type: "ORDER_UPDATE", Message: "Votre commande #12 a été expédiée"}
}

func (orderUpdate) ToMail() notification.MailData {
	return notification.MailData{Subject: "Commande #12", Body: "<p>Expédiée</p>"}
}

func (o orderUpdate) ToWebhook() notification.WebhookData {
	return notification.WebhookData{URL: o.webhook, Payload: map[string]any{"orderId": 12}}
}

func TestSendFansOutToEveryChannel(t *testing.T) {
	var hookBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hookBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := &memoryStore{}
	pusher := &mockPusher{}
	pusher.On("SendTo", uint(4), mock.MatchedBy(func(v any) bool {
		m, ok := v.(map[string]any)
		return ok && m["type"] == "ORDER_UPDATE"
	})).Return(nil).Once()
	outbox := &mail.Fake{}
	notification.UseStore(store)
	notification.UsePusher(pusher)
	mail.SetTransport(outbox)
	t.Cleanup(func() {
		notification.UseStore(nil)
		notification.UsePusher(nil)
		mail.SetTransport(nil)
	})

	err := notification.Send(context.Background(),
		notification.Recipient{UserID: 4, Email: "sophie@example.com"},
		orderUpdate{webhook: srv.URL})
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "ORDER_UPDATE", store.saved[0].Type)

	pusher.AssertExpectations(t)

	sent := outbox.SentTo("sophie@example.com")
	require.Len(t, sent, 1)
	assert.Equal(t, "Commande #12", sent[0].Subject)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(hookBody, &payload))
	assert.EqualValues(t, 12, payload["orderId"])
}

type mailOnly struct{}

func (mailOnly) Via() []string { return []string{"mail", "sms"} }
func (mailOnly) ToMail() notification.MailData {
	return notification.MailData{Subject: "Hello", Body: "x"}
}

func TestSendJoinsChannelErrors(t *testing.T) {
	outbox := &mail.Fake{}
	mail.SetTransport(outbox)
	t.Cleanup(func() { mail.SetTransport(nil) })

	err := notification.Send(context.Background(), notification.Recipient{Email: "a@b.io"}, mailOnly{})
	assert.ErrorIs(t, err, notification.ErrNoChannel)
	assert.Len(t, outbox.Sent(), 1, "mail still goes out when another channel fails")
}

func TestDatabaseChannelWithoutStore(t *testing.T) {
	notification.UseStore(nil)
	err := notification.Send(context.Background(), notification.Recipient{UserID: 1}, orderUpdate{})
	assert.Error(t, err)
}

type pushOnly struct{}

func (pushOnly) Via() []string { return []string{notification.ChannelPush} }

type restock struct{ pushOnly }

func (restock) ToPush() any { return map[string]any{"type": "PRODUCT_RESTOCK"} }

func TestPushChannel(t *testing.T) {
	pusher := &mockPusher{}
	pusher.On("SendTo", uint(9), mock.Anything).Return(errors.New("socket closed"))
	notification.UsePusher(pusher)
	t.Cleanup(func() { notification.UsePusher(nil) })

	err := notification.Send(context.Background(), notification.Recipient{UserID: 9}, pushOnly{})
	assert.ErrorIs(t, err, notification.ErrNoChannel, "nothing to push without a stored row or ToPush")
	pusher.AssertNotCalled(t, "SendTo", uint(9), mock.Anything)

	err = notification.Send(context.Background(), notification.Recipient{UserID: 9}, restock{})
	assert.EqualError(t, err, "socket closed")
	pusher.AssertNumberOfCalls(t, "SendTo", 1)

	require.NoError(t, notification.Send(context.Background(), notification.Recipient{}, restock{}), "guests are skipped")
	pusher.AssertNumberOfCalls(t, "SendTo", 1)
}
