package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestOrderEvent_JSON(t *testing.T) {
	ev := &OrderEvent{
		Type:       EventOrderCreated,
		OrderID:    "o-1",
		CustomerID: 7,
		Kind:       "product",
		Total:      498,
		Status:     "Completed",
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "order_id")
	assert.Contains(t, raw, "customer_id")
	assert.NotContains(t, raw, "item_name")
	assert.NotContains(t, raw, "display")
}

func TestPublisherSubscriber(t *testing.T) {
	client := setupTestRedis(t)

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *OrderEvent, 1)
	go func() {
		_ = subscriber.Subscribe(ctx, func(ev *OrderEvent) {
			received <- ev
		})
	}()

	// 等待订阅生效
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, ChannelOrders).Result()
		return err == nil && n[ChannelOrders] > 0
	}, 2*time.Second, 10*time.Millisecond)

	err := publisher.PublishOrder(ctx, &OrderEvent{OrderID: "o-42", CustomerID: 3, Total: 199})
	require.NoError(t, err)

	select {
	case ev := <-received:
		assert.Equal(t, "o-42", ev.OrderID)
		assert.Equal(t, int64(3), ev.CustomerID)
		assert.Equal(t, EventOrderCreated, ev.Type)
		assert.Equal(t, 199.0, ev.Total)
	case <-ctx.Done():
		t.Fatal("Timeout waiting for order event")
	}
}

func TestPublishOrder_KeepsExplicitType(t *testing.T) {
	client := setupTestRedis(t)
	ev := &OrderEvent{Type: EventOrderStatus, OrderID: "o-1"}
	require.NoError(t, NewPublisher(client).PublishOrder(context.Background(), ev))
	assert.Equal(t, EventOrderStatus, ev.Type)
}

func TestSubscribe_StopsOnCancel(t *testing.T) {
	client := setupTestRedis(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSubscriber(client).Subscribe(ctx, func(*OrderEvent) {})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
