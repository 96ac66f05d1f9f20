package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/qs3c/talk_comment_server/internal/model/dto"
)

// 每个连接的待发送队列长度，写满说明对端不再读取
const sendBufferSize = 256

// Hub 直播频道：所有连接共享一个广播域（讲者页 + 观众页）
type Hub struct {
	clients   map[*Client]struct{}
	mu        sync.RWMutex
	writeWait time.Duration
	log       zerolog.Logger
}

type Client struct {
	ID   string
	Conn *websocket.Conn

	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
}

// NewClient 为新连接分配 ID
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func NewHub(writeWait time.Duration, log zerolog.Logger) *Hub {
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &Hub{
		clients:   make(map[*Client]struct{}),
		writeWait: writeWait,
		log:       log.With().Str("component", "ws_hub").Logger(),
	}
}

// Register 加入广播域并启动该连接的写协程
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	go h.writePump(client)

	h.log.Info().Str("client_id", client.ID).Int("total", total).Msg("Client connected")
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	client.stop()

	if ok {
		h.log.Info().Str("client_id", client.ID).Msg("Client disconnected")
	}
}

// Broadcast 把消息放入每个连接的发送队列，不等待实际写出，返回入队成功的连接数。
// 队列已满的连接被移除并关闭。
func (h *Hub) Broadcast(data []byte) int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	queued := 0
	for _, c := range clients {
		select {
		case c.send <- data:
			queued++
		default:
			h.log.Warn().Str("client_id", c.ID).Msg("Send buffer full, dropping client")
			h.evict(c)
		}
	}
	return queued
}

// BroadcastRaw 单实例模式下客户端消息直接本地广播
func (h *Hub) BroadcastRaw(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// Publish 推送评论事件
func (h *Hub) Publish(ctx context.Context, event *dto.LiveEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 关闭所有连接，用于服务退出
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.stop()
		// WriteControl 可以与写协程并发调用
		_ = c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		c.Conn.Close()
	}
}

// writePump 该连接唯一的写入方，gorilla 连接只允许一个并发写
func (h *Hub) writePump(c *Client) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
				h.evict(c)
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.log.Warn().Err(err).Str("client_id", c.ID).Msg("Broadcast write failed")
				h.evict(c)
				return
			}
		}
	}
}

func (h *Hub) evict(c *Client) {
	h.Unregister(c)
	c.Conn.Close()
}

func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
