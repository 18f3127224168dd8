package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) *Registry {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return NewRegistry(logger.Sugar())
}

// dial opens a websocket against a test server that registers the connection
// under the user id from the query string.
func dial(t *testing.T, r *Registry, userID string) *websocket.Conn {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		require.NoError(t, err)
		r.Register(req.URL.Query().Get("user"), conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestSendDeliversPayload(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	conn := dial(t, r, "alice")

	require.True(t, r.Connected("alice"))
	require.True(t, r.Send("alice", []byte(`{"type":"MESSAGE"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"type":"MESSAGE"}`, string(payload))
}

func TestSendToAbsentUser(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	require.False(t, r.Connected("nobody"))
	require.False(t, r.Send("nobody", []byte("x")))
}

func TestDropOnDisconnect(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	conn := dial(t, r, "alice")
	require.True(t, r.Connected("alice"))

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return !r.Connected("alice")
	}, 2*time.Second, 10*time.Millisecond)
	require.False(t, r.Send("alice", []byte("x")))
}

func TestReconnectReplacesConnection(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	dial(t, r, "alice")
	second := dial(t, r, "alice")

	require.True(t, r.Connected("alice"))
	require.True(t, r.Send("alice", []byte("hello")))

	// the payload lands on the latest connection
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := second.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "hello", string(payload))
}
