package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/talk_comment_server/internal/model/dto"
)

const DefaultChannel = "talk_live"

// Publisher Redis 发布者，多实例部署时让所有实例的直播连接收到同一份消息
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// Publish 发布评论事件
func (p *Publisher) Publish(ctx context.Context, event *dto.LiveEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal live event: %w", err)
	}
	return p.BroadcastRaw(ctx, data)
}

// BroadcastRaw 发布客户端原始消息
func (p *Publisher) BroadcastRaw(ctx context.Context, data []byte) error {
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client  *redis.Client
	channel string
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client, channel string) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Subscriber{client: client, channel: channel}
}

// Subscribe 阻塞订阅，直到 ctx 取消或连接关闭
func (s *Subscriber) Subscribe(ctx context.Context, handler func([]byte)) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	// 等待订阅确认，确保返回前不会丢消息
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", s.channel, err)
	}

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handler([]byte(msg.Payload))
		}
	}
}
