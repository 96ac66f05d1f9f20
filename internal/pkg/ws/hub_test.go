package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/talk_comment_server/internal/model/dto"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// startHubServer 启动一个把每个连接注册到 hub 的测试服务
func startHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}

		client := NewClient(conn)
		hub.Register(client)
		defer hub.Unregister(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.ConnectionCount() == n
	}, time.Second, 10*time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub(0, zerolog.Nop())

	assert.NotNil(t, hub)
	assert.Equal(t, 10*time.Second, hub.writeWait)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestNewClient_AssignsUniqueID(t *testing.T) {
	a := NewClient(nil)
	b := NewClient(nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub(time.Second, zerolog.Nop())

	assert.Equal(t, 0, hub.Broadcast([]byte(`{"type":"ping"}`)))
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(time.Second, zerolog.Nop())
	server := startHubServer(t, hub)

	conn := dial(t, server)
	waitForConnections(t, hub, 1)

	conn.Close()
	waitForConnections(t, hub, 0)
}

func TestHub_Broadcast_AllClients(t *testing.T) {
	hub := NewHub(time.Second, zerolog.Nop())
	server := startHubServer(t, hub)

	presenter := dial(t, server)
	audience := dial(t, server)
	waitForConnections(t, hub, 2)

	delivered := hub.Broadcast([]byte(`{"type":"slide","page":3}`))
	assert.Equal(t, 2, delivered)

	for _, conn := range []*websocket.Conn{presenter, audience} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, received, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"slide","page":3}`, string(received))
	}
}

func TestHub_Publish_CommentEvent(t *testing.T) {
	hub := NewHub(time.Second, zerolog.Nop())
	server := startHubServer(t, hub)

	conn := dial(t, server)
	waitForConnections(t, hub, 1)

	event := &dto.LiveEvent{
		Type:    "comment_created",
		ID:      5,
		Comment: &dto.CommentItem{ID: 5, UserIP: "127.0.0.1", CommentText: "great talk"},
	}
	require.NoError(t, hub.Publish(context.Background(), event))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, received, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded dto.LiveEvent
	require.NoError(t, json.Unmarshal(received, &decoded))
	assert.Equal(t, "comment_created", decoded.Type)
	require.NotNil(t, decoded.Comment)
	assert.Equal(t, "great talk", decoded.Comment.CommentText)
}

func TestHub_BroadcastRaw(t *testing.T) {
	hub := NewHub(time.Second, zerolog.Nop())
	server := startHubServer(t, hub)

	conn := dial(t, server)
	waitForConnections(t, hub, 1)

	require.NoError(t, hub.BroadcastRaw(context.Background(), []byte(`{"reaction":"clap"}`)))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, received, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"reaction":"clap"}`, string(received))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(time.Second, zerolog.Nop())
	server := startHubServer(t, hub)

	conn := dial(t, server)
	waitForConnections(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.ConnectionCount())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_Broadcast_StalledClientDoesNotBlock(t *testing.T) {
	hub := NewHub(200*time.Millisecond, zerolog.Nop())
	server := startHubServer(t, hub)

	// Never reads, so its socket buffers fill up
	_ = dial(t, server)
	healthy := dial(t, server)
	waitForConnections(t, hub, 2)

	final := make(chan []byte, 1)
	go func() {
		for {
			_, msg, err := healthy.ReadMessage()
			if err != nil {
				return
			}
			if len(msg) < 64 {
				final <- msg
				return
			}
		}
	}()

	payload := []byte(`"` + strings.Repeat("x", 64*1024) + `"`)
	var worst time.Duration
	for i := 0; i < 2000 && hub.ConnectionCount() == 2; i++ {
		start := time.Now()
		hub.Broadcast(payload)
		if elapsed := time.Since(start); elapsed > worst {
			worst = elapsed
		}
		time.Sleep(2 * time.Millisecond)
	}

	assert.Less(t, worst, 100*time.Millisecond)
	waitForConnections(t, hub, 1)

	assert.Equal(t, 1, hub.Broadcast([]byte(`{"type":"done"}`)))
	select {
	case msg := <-final:
		assert.JSONEq(t, `{"type":"done"}`, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("healthy client did not receive the final message")
	}
}

func TestHub_Publish_CanceledContext(t *testing.T) {
	hub := NewHub(time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hub.Publish(ctx, &dto.LiveEvent{Type: "comment_created"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, hub.BroadcastRaw(ctx, []byte(`{}`)), context.Canceled)
}
