package repository

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
)

type OrderRepository struct {
	orders *collection[model.Order]
}

func NewOrderRepository(store kvstore.Store, log *logrus.Logger) *OrderRepository {
	return &OrderRepository{orders: newCollection[model.Order](store, KeyOrders, log)}
}

func (r *OrderRepository) Load(ctx context.Context) error {
	return r.orders.load(ctx, nil)
}

// List 全部订单，最新的在前
func (r *OrderRepository) List() []model.Order {
	return r.orders.all()
}

func (r *OrderRepository) ListByCustomer(customerID int64) []model.Order {
	all := r.orders.all()
	out := make([]model.Order, 0, len(all))
	for _, o := range all {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

func (r *OrderRepository) GetByID(id string) (*model.Order, error) {
	o, ok := r.orders.find(func(o *model.Order) bool { return o.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

// Prepend 新订单插入到最前面
func (r *OrderRepository) Prepend(ctx context.Context, order *model.Order) error {
	return r.orders.mutate(ctx, func(items []model.Order) ([]model.Order, error) {
		return append([]model.Order{*order}, items...), nil
	})
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	var updated model.Order
	err := r.orders.mutate(ctx, func(items []model.Order) ([]model.Order, error) {
		i := indexOf(items, func(o *model.Order) bool { return o.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		items[i].Status = status
		updated = items[i]
		return items, nil
	})
	if err != nil && updated.ID == "" {
		return nil, err
	}
	return &updated, err
}
