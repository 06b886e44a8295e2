package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/pubsub"
	"github.com/qs3c/course_store_server/internal/pkg/ws"
	"github.com/qs3c/course_store_server/internal/repository"
)

func seedOrders(t *testing.T, env *storeEnv) {
	t.Helper()
	ctx := context.Background()
	for i, customer := range []int64{1, 2, 1} {
		o := &model.Order{
			ID:           []string{"o-1", "o-2", "o-3"}[i],
			CustomerID:   customer,
			CustomerName: "customer",
			Kind:         model.PurchaseProduct,
			Items:        []model.OrderItem{{ID: "p1", Name: "Product p1", Quantity: 1, Price: "₹499.00"}},
			Total:        499,
			Status:       model.OrderCompleted,
		}
		require.NoError(t, env.orders.Prepend(ctx, o))
	}
}

func TestOrderService_Lists(t *testing.T) {
	env := newStoreEnv(t)
	seedOrders(t, env)
	svc := NewOrderService(env.orders, env.settings, testLogger())

	all := svc.List()
	require.Len(t, all, 3)
	assert.Equal(t, "o-3", all[0].ID)

	mine := svc.ListMine(1)
	require.Len(t, mine, 2)
	assert.Equal(t, "o-3", mine[0].ID)
	assert.Equal(t, "o-1", mine[1].ID)
}

func TestOrderService_Get(t *testing.T) {
	env := newStoreEnv(t)
	seedOrders(t, env)
	svc := NewOrderService(env.orders, env.settings, testLogger())

	o, err := svc.Get(Viewer{UserID: 2}, "o-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), o.CustomerID)

	_, err = svc.Get(Viewer{UserID: 1}, "o-2")
	assert.Equal(t, ErrOrderPermission, err)

	_, err = svc.Get(Viewer{UserID: 99, Admin: true}, "o-2")
	assert.NoError(t, err)

	_, err = svc.Get(Viewer{UserID: 1}, "missing")
	assert.Equal(t, ErrOrderNotFound, err)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	env := newStoreEnv(t)
	seedOrders(t, env)
	pub := &recordingPublisher{}
	svc := NewOrderService(env.orders, env.settings, testLogger()).WithPublisher(pub)
	ctx := context.Background()

	o, err := svc.UpdateStatus(ctx, "o-2", "Shipped")
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, o.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, pubsub.EventOrderStatus, pub.events[0].Type)
	assert.Equal(t, "Shipped", pub.events[0].Status)
	assert.Equal(t, int64(2), pub.events[0].CustomerID)
	assert.Equal(t, "₹499.00", pub.events[0].Display)

	_, err = svc.UpdateStatus(ctx, "o-2", "Lost")
	assert.Equal(t, ErrInvalidOrderStatus, err)

	_, err = svc.UpdateStatus(ctx, "missing", "Cancelled")
	assert.Equal(t, ErrOrderNotFound, err)
}

func TestOrderService_UpdateStatusPersistFailure(t *testing.T) {
	env := newStoreEnv(t)
	seedOrders(t, env)
	svc := NewOrderService(env.orders, env.settings, testLogger())
	env.store.setDown(true)

	o, err := svc.UpdateStatus(context.Background(), "o-1", "Cancelled")
	assert.True(t, errors.Is(err, repository.ErrPersist))
	require.NotNil(t, o)
	assert.Equal(t, model.OrderCancelled, o.Status)
}

// recordingNotifier 记录推送的消息
type recordingNotifier struct {
	admin chan *ws.Message
	users chan int64
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{admin: make(chan *ws.Message, 4), users: make(chan int64, 4)}
}

func (n *recordingNotifier) BroadcastAdmins(msg *ws.Message) error {
	n.admin <- msg
	return nil
}

func (n *recordingNotifier) SendToUser(userID int64, _ *ws.Message) error {
	n.users <- userID
	return nil
}

func TestOrderFeed_Relay(t *testing.T) {
	notifier := newRecordingNotifier()
	feed := NewOrderFeed(nil, notifier, testLogger())

	feed.Relay(&pubsub.OrderEvent{Type: pubsub.EventOrderCreated, OrderID: "o-1", CustomerID: 7})

	msg := <-notifier.admin
	assert.Equal(t, pubsub.EventOrderCreated, msg.Type)
	assert.Equal(t, int64(7), <-notifier.users)
}

func TestOrderFeed_Run(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	notifier := newRecordingNotifier()
	feed := NewOrderFeed(pubsub.NewSubscriber(client), notifier, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(pubsub.ChannelOrders)[pubsub.ChannelOrders] > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, pubsub.NewPublisher(client).PublishOrder(ctx, &pubsub.OrderEvent{OrderID: "o-9", CustomerID: 3}))

	select {
	case msg := <-notifier.admin:
		ev, ok := msg.Data.(*pubsub.OrderEvent)
		require.True(t, ok)
		assert.Equal(t, "o-9", ev.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("order event was not relayed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop")
	}
}
