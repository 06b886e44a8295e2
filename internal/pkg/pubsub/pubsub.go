package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelOrders = "store_orders"
)

// 事件类型
const (
	EventOrderCreated = "order_created"
	EventOrderStatus  = "order_status"
)

// OrderEvent 推送给后台的订单动态
type OrderEvent struct {
	Type         string    `json:"type"`
	OrderID      string    `json:"order_id"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Kind         string    `json:"kind"`
	ItemName     string    `json:"item_name,omitempty"`
	Total        float64   `json:"total"`
	Display      string    `json:"display,omitempty"` // 带货币符号的金额
	Status       string    `json:"status"`
	Date         time.Time `json:"date"`
}

// Publisher Redis 发布者
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, channel: ChannelOrders}
}

// PublishOrder 发布订单事件，未设置类型时视为新订单
func (p *Publisher) PublishOrder(ctx context.Context, ev *OrderEvent) error {
	if ev.Type == "" {
		ev.Type = EventOrderCreated
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client  *redis.Client
	channel string
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client, channel: ChannelOrders}
}

// Subscribe 订阅订单事件，直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*OrderEvent)) error {
	ps := s.client.Subscribe(ctx, s.channel)
	defer ps.Close()

	// 等待订阅确认，避免之后发布的消息丢失
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", s.channel, err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var ev OrderEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue // 忽略解析错误
			}

			handler(&ev)
		}
	}
}
