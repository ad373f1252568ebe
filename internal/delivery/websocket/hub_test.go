package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parenting-server/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type staticVerifier struct{ token string }

func (v staticVerifier) VerifyFor(token string, _ uuid.UUID) error {
	if token != v.token {
		return domain.ErrTokenInvalid
	}
	return nil
}

func wsURL(srv *httptest.Server, sessionID uuid.UUID, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session_id=" + sessionID.String() + "&token=" + token
}

func TestHub_DeliversSessionEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(staticVerifier{token: "good"}, nil, zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	srv := httptest.NewServer(mux)

	mine, other := uuid.New(), uuid.New()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, mine, "good"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(domain.SessionEvent{Type: domain.EventRoundFailed, SessionID: other})
	hub.Notify(domain.SessionEvent{Type: domain.EventRoundCompleted, SessionID: mine, Round: 3})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.SessionEvent
	require.NoError(t, json.Unmarshal(data, &got))
	// Событие чужой сессии не доставляется.
	assert.Equal(t, domain.EventRoundCompleted, got.Type)
	assert.Equal(t, 3, got.Round)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	srv.Close()
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(staticVerifier{token: "good"}, nil, zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	srv := httptest.NewServer(hub.Handler())

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, uuid.New(), "good"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-stopped

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	// Hub закрыл соединение.
	assert.Error(t, err)
	conn.Close()
	srv.Close()
}

func TestHub_RejectsBadRequests(t *testing.T) {
	hub := NewHub(staticVerifier{token: "good"}, nil, zap.NewNop())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, uuid.New(), "bad"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?session_id=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://play.example.com"})
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)

	r.Header.Set("Origin", "https://play.example.com")
	assert.True(t, check(r))
	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(r))

	assert.True(t, originChecker([]string{"*"})(r))
	assert.True(t, originChecker(nil)(r))
}
