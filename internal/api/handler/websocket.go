package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/qs3c/talk_comment_server/config"
	"github.com/qs3c/talk_comment_server/internal/pkg/ws"
)

// 单条客户端消息转发（如 Redis PUBLISH）的超时
const broadcastTimeout = 5 * time.Second

// Broadcaster 客户端消息的转发出口：单实例直接走 hub，多实例走 Redis
type Broadcaster interface {
	BroadcastRaw(ctx context.Context, data []byte) error
}

type WebSocketHandler struct {
	hub         *ws.Hub
	broadcaster Broadcaster
	upgrader    websocket.Upgrader
	maxMessage  int64
	log         zerolog.Logger
}

func NewWebSocketHandler(hub *ws.Hub, broadcaster Broadcaster, cfg config.LiveConfig, log zerolog.Logger) *WebSocketHandler {
	maxMessage := cfg.MaxMessageBytes
	if maxMessage <= 0 {
		maxMessage = 4096
	}

	return &WebSocketHandler{
		hub:         hub,
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		maxMessage: maxMessage,
		log:        log.With().Str("component", "ws_handler").Logger(),
	}
}

// Handle WebSocket 连接处理，收到的每条 JSON 消息都会广播给所有连接
// GET /ws
func (h *WebSocketHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写回了错误响应
		h.log.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}
	conn.SetReadLimit(h.maxMessage)

	client := ws.NewClient(conn)
	h.hub.Register(client)

	go h.readLoop(client)
}

func (h *WebSocketHandler) readLoop(client *ws.Client) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("client_id", client.ID).Msg("Connection closed unexpectedly")
			}
			return
		}

		if !json.Valid(data) {
			h.log.Warn().Str("client_id", client.ID).Msg("Dropped non-JSON message")
			continue
		}

		h.forward(client, data)
	}
}

func (h *WebSocketHandler) forward(client *ws.Client, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()

	if err := h.broadcaster.BroadcastRaw(ctx, data); err != nil {
		h.log.Error().Err(err).Str("client_id", client.ID).Msg("Failed to broadcast message")
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
