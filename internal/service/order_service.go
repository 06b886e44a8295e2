package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/pricing"
	"github.com/qs3c/course_store_server/internal/pkg/pubsub"
	"github.com/qs3c/course_store_server/internal/repository"
)

var (
	ErrOrderNotFound      = errors.New("订单不存在")
	ErrOrderPermission    = errors.New("无权查看此订单")
	ErrInvalidOrderStatus = errors.New("订单状态不合法")
)

type OrderService struct {
	orderRepo *repository.OrderRepository
	settings  *repository.SettingsRepository
	publisher OrderPublisher
	log       *logrus.Entry
}

func NewOrderService(orderRepo *repository.OrderRepository, settings *repository.SettingsRepository, log *logrus.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		settings:  settings,
		log:       log.WithField("service", "order"),
	}
}

// WithPublisher 状态变化时发布订单事件
func (s *OrderService) WithPublisher(p OrderPublisher) *OrderService {
	s.publisher = p
	return s
}

// List 全部订单，最新的在前
func (s *OrderService) List() []model.Order {
	return s.orderRepo.List()
}

// ListMine 顾客自己的订单
func (s *OrderService) ListMine(customerID int64) []model.Order {
	return s.orderRepo.ListByCustomer(customerID)
}

// Get 获取订单，顾客只能查看自己的订单
func (s *OrderService) Get(viewer Viewer, id string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !viewer.Admin && order.CustomerID != viewer.UserID {
		return nil, ErrOrderPermission
	}
	return order, nil
}

// UpdateStatus 后台修改订单状态
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*model.Order, error) {
	next := model.OrderStatus(status)
	if !next.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, next)
	if err != nil && order == nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": id,
		"status":   next,
	}).Info("order status changed")

	if s.publisher != nil {
		ev := &pubsub.OrderEvent{
			Type:         pubsub.EventOrderStatus,
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			CustomerName: order.CustomerName,
			Kind:         string(order.Kind),
			Total:        order.Total,
			Display:      pricing.FormatAmount(s.settings.Get().CurrencySymbol, order.Total),
			Status:       string(order.Status),
			Date:         order.Date,
		}
		if len(order.Items) > 0 {
			ev.ItemName = order.Items[0].Name
		}
		if perr := s.publisher.PublishOrder(ctx, ev); perr != nil {
			s.log.WithError(perr).Warn("failed to publish order status")
		}
	}
	return order, err
}
