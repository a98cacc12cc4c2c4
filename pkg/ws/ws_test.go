package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/pkg/ws"
)

func TestSendToReachesOnlyThatUser(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := uint(1)
		if r.URL.Query().Get("u") == "2" {
			uid = 2
		}
		ws.Upgrade(w, r, hub, uid)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sophie, _, err := websocket.DefaultDialer.Dial(url+"?u=1", nil)
	require.NoError(t, err)
	defer sophie.Close()
	isabelle, _, err := websocket.DefaultDialer.Dial(url+"?u=2", nil)
	require.NoError(t, err)
	defer isabelle.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, hub.Online(1))

	require.NoError(t, hub.SendTo(1, map[string]string{"type": "ORDER_UPDATE"}))

	sophie.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := sophie.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ORDER_UPDATE"}`, string(msg))

	isabelle.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = isabelle.ReadMessage()
	assert.Error(t, err, "user 2 must not receive user 1's message")
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, hub, 9)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Online(9) }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.Online(9) }, 2*time.Second, 10*time.Millisecond)
}
