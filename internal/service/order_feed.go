package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/pkg/pubsub"
	"github.com/qs3c/course_store_server/internal/pkg/ws"
)

// OrderSubscriber 订阅订单事件
type OrderSubscriber interface {
	Subscribe(ctx context.Context, handler func(*pubsub.OrderEvent)) error
}

// Notifier 向在线连接推送消息，由 ws.Hub 实现
type Notifier interface {
	BroadcastAdmins(msg *ws.Message) error
	SendToUser(userID int64, msg *ws.Message) error
}

// OrderFeed 把订单事件转发给后台管理员和下单顾客
type OrderFeed struct {
	sub      OrderSubscriber
	notifier Notifier
	log      *logrus.Entry
}

func NewOrderFeed(sub OrderSubscriber, notifier Notifier, log *logrus.Logger) *OrderFeed {
	return &OrderFeed{
		sub:      sub,
		notifier: notifier,
		log:      log.WithField("component", "order_feed"),
	}
}

// Run 阻塞直到 ctx 结束
func (f *OrderFeed) Run(ctx context.Context) error {
	f.log.Info("order feed started")
	err := f.sub.Subscribe(ctx, f.Relay)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Relay 推送单个事件
func (f *OrderFeed) Relay(ev *pubsub.OrderEvent) {
	msg := &ws.Message{Type: ev.Type, Data: ev}

	if err := f.notifier.BroadcastAdmins(msg); err != nil {
		f.log.WithError(err).Warn("failed to broadcast order event")
	}
	if ev.CustomerID != 0 {
		if err := f.notifier.SendToUser(ev.CustomerID, msg); err != nil {
			f.log.WithError(err).WithField("user_id", ev.CustomerID).Warn("failed to notify customer")
		}
	}
}
