package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/metrics"
	"github.com/qs3c/course_store_server/internal/pkg/pricing"
	"github.com/qs3c/course_store_server/internal/pkg/pubsub"
	"github.com/qs3c/course_store_server/internal/pkg/queue"
	"github.com/qs3c/course_store_server/internal/repository"
)

var (
	ErrPaymentNotConfirmed = errors.New("请先在支付页面完成付款")
	ErrModuleNotForSale    = errors.New("该模块不支持单独购买")
	ErrInvalidQuantity     = errors.New("购买数量必须大于 0")
	ErrUnknownPurchaseKind = errors.New("不支持的购买类型")
	ErrInvalidPrice        = errors.New("商品价格无效")
)

// OrderPublisher 订单事件发布
type OrderPublisher interface {
	PublishOrder(ctx context.Context, ev *pubsub.OrderEvent) error
}

// ReceiptQueue 收据邮件队列
type ReceiptQueue interface {
	Push(ctx context.Context, job *queue.ReceiptJob) error
}

// CheckoutService 询价和下单。付款在外部支付页完成，
// 这里只信任顾客的付款确认
type CheckoutService struct {
	productRepo  *repository.ProductRepository
	tierRepo     *repository.TierRepository
	couponRepo   *repository.CouponRepository
	orderRepo    *repository.OrderRepository
	purchaseRepo *repository.PurchaseRepository
	settings     *repository.SettingsRepository
	publisher    OrderPublisher
	receipts     ReceiptQueue
	log          *logrus.Entry
	now          func() time.Time
}

func NewCheckoutService(
	productRepo *repository.ProductRepository,
	tierRepo *repository.TierRepository,
	couponRepo *repository.CouponRepository,
	orderRepo *repository.OrderRepository,
	purchaseRepo *repository.PurchaseRepository,
	settings *repository.SettingsRepository,
	log *logrus.Logger,
) *CheckoutService {
	return &CheckoutService{
		productRepo:  productRepo,
		tierRepo:     tierRepo,
		couponRepo:   couponRepo,
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		settings:     settings,
		log:          log.WithField("service", "checkout"),
		now:          time.Now,
	}
}

// WithPublisher 下单后发布订单事件
func (s *CheckoutService) WithPublisher(p OrderPublisher) *CheckoutService {
	s.publisher = p
	return s
}

// WithReceiptQueue 下单后投递收据邮件任务
func (s *CheckoutService) WithReceiptQueue(q ReceiptQueue) *CheckoutService {
	s.receipts = q
	return s
}

// purchaseItem 可购买的商品、订阅档位或模块
type purchaseItem struct {
	kind          model.PurchaseKind
	id            string
	name          string
	basePrice     float64
	salePrice     *float64
	saleExpiresAt *time.Time
	paymentLink   string
	singleUnit    bool
}

type quote struct {
	item      *purchaseItem
	quantity  int
	breakdown pricing.Breakdown
	coupon    *model.Coupon // 通过校验的优惠券
	result    *dto.CouponResult
	settings  config.StoreSettings
}

// Quote 计算应付金额并返回支付链接
func (s *CheckoutService) Quote(req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	q, err := s.price(req)
	if err != nil {
		return nil, err
	}

	symbol := q.settings.CurrencySymbol
	return &dto.QuoteResponse{
		Kind:      string(q.item.kind),
		ItemID:    q.item.id,
		ItemName:  q.item.name,
		Quantity:  q.quantity,
		Breakdown: q.breakdown,
		Display: dto.AmountDisplay{
			UnitPrice: pricing.FormatAmount(symbol, q.breakdown.UnitPrice),
			Subtotal:  pricing.FormatAmount(symbol, q.breakdown.Subtotal),
			Discount:  pricing.FormatAmount(symbol, q.breakdown.Discount),
			Total:     pricing.FormatAmount(symbol, q.breakdown.Total),
		},
		Coupon:      q.result,
		PaymentLink: q.item.paymentLink,
	}, nil
}

// RecordPurchase records a checkout the customer confirmed as paid.
//
// The item id joins the customer's purchased set, an applied coupon's used
// count grows by one and a Completed order is prepended to the order list. A
// coupon that fails validation does not block the checkout; the order goes
// through at full price and the rejection is reported in the response.
//
// Persistence failures do not roll anything back. The response is returned
// together with an error wrapping repository.ErrPersist.
func (s *CheckoutService) RecordPurchase(ctx context.Context, customer *model.User, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !req.PaymentConfirmed {
		return nil, ErrPaymentNotConfirmed
	}

	q, err := s.price(&req.QuoteRequest)
	if err != nil {
		return nil, err
	}
	item := q.item

	var persistErrs []error
	keep := func(err error) error {
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrPersist) {
			persistErrs = append(persistErrs, err)
			return nil
		}
		return err
	}

	if q.coupon != nil {
		if err := keep(s.reserveCoupon(ctx, q)); err != nil {
			return nil, err
		}
	}
	symbol := q.settings.CurrencySymbol

	order := &model.Order{
		ID:           uuid.NewString(),
		CustomerID:   customer.ID,
		CustomerName: customer.Username,
		Date:         s.now(),
		Kind:         item.kind,
		Items: []model.OrderItem{{
			ID:       item.id,
			Name:     item.name,
			Quantity: q.quantity,
			Price:    pricing.FormatAmount(symbol, q.breakdown.UnitPrice),
		}},
		Subtotal: pricing.Round2(q.breakdown.Subtotal),
		Discount: pricing.Round2(q.breakdown.Discount),
		Total:    pricing.Round2(q.breakdown.Total),
		Status:   model.OrderCompleted,
	}
	if customer.Email != nil {
		order.CustomerEmail = *customer.Email
	}
	if q.coupon != nil {
		order.CouponCode = q.coupon.Code
	}

	log := s.log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customer.ID,
		"kind":        item.kind,
		"item_id":     item.id,
	})

	purchased, err := s.purchaseRepo.Add(ctx, customer.ID, item.id)
	if err := keep(err); err != nil {
		return nil, err
	}

	if err := keep(s.orderRepo.Prepend(ctx, order)); err != nil {
		return nil, err
	}

	metrics.Checkouts.WithLabelValues(string(item.kind)).Inc()
	metrics.Revenue.WithLabelValues(string(item.kind)).Add(order.Total)
	log.WithField("total", order.Total).Info("purchase recorded")

	s.publish(ctx, order, symbol, log)
	s.enqueueReceipt(ctx, order, symbol, log)

	return &dto.CheckoutResponse{
		Order:        order,
		Coupon:       q.result,
		PurchasedIDs: purchased.IDs(),
	}, errors.Join(persistErrs...)
}

func (s *CheckoutService) price(req *dto.QuoteRequest) (*quote, error) {
	item, err := s.resolveItem(req)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	switch {
	case quantity < 0:
		return nil, ErrInvalidQuantity
	case quantity == 0 || item.singleUnit:
		quantity = 1
	}

	settings := s.settings.Get()
	now := s.now()
	q := &quote{item: item, quantity: quantity, settings: settings}

	if req.CouponCode != "" {
		coupon, _ := s.couponRepo.GetByCode(req.CouponCode)
		validity := pricing.CheckCoupon(coupon, now, settings.Location())
		q.result = &dto.CouponResult{Code: req.CouponCode, Valid: validity.OK, Reason: validity.Reason}
		if validity.OK {
			q.coupon = coupon
			q.result.Code = coupon.Code
		} else {
			metrics.CouponRejections.WithLabelValues(validity.Reason).Inc()
		}
	}

	if err := q.calculate(now); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *quote) calculate(now time.Time) error {
	b, err := pricing.Calculate(pricing.Input{
		BasePrice:     q.item.basePrice,
		SalePrice:     q.item.salePrice,
		SaleExpiresAt: q.item.saleExpiresAt,
		Quantity:      q.quantity,
		Coupon:        q.coupon,
		Now:           now,
	})
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return ErrInvalidQuantity
	case errors.Is(err, pricing.ErrInvalidPrice):
		return ErrInvalidPrice
	case err != nil:
		return err
	}
	q.breakdown = b
	return nil
}

// reserveCoupon 在优惠券集合锁内重新校验并占用一次使用次数。
// 报价之后优惠券被其他订单用尽、停用或删除时，按原价重新计算
func (s *CheckoutService) reserveCoupon(ctx context.Context, q *quote) error {
	now := s.now()
	validity, err := s.couponRepo.ReserveUsage(ctx, q.coupon.ID, now, q.settings.Location())
	if !errors.Is(err, repository.ErrCouponUnavailable) && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"coupon": q.coupon.Code,
		"reason": validity.Reason,
	}).Info("coupon became unavailable during checkout")
	metrics.CouponRejections.WithLabelValues(validity.Reason).Inc()

	q.coupon = nil
	q.result.Valid = false
	q.result.Reason = validity.Reason
	return q.calculate(now)
}

func (s *CheckoutService) resolveItem(req *dto.QuoteRequest) (*purchaseItem, error) {
	switch model.PurchaseKind(req.Kind) {
	case model.PurchaseProduct:
		p, err := s.productRepo.GetByID(req.ItemID)
		if err != nil {
			return nil, mapProductErr(err)
		}
		return &purchaseItem{
			kind:          model.PurchaseProduct,
			id:            p.ID,
			name:          p.Title,
			basePrice:     p.Price,
			salePrice:     p.SalePrice,
			saleExpiresAt: p.SaleExpiresAt,
			paymentLink:   p.PaymentLink,
		}, nil

	case model.PurchaseSubscription:
		t, err := s.tierRepo.GetByID(req.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTierNotFound
			}
			return nil, err
		}
		return &purchaseItem{
			kind:        model.PurchaseSubscription,
			id:          t.ID,
			name:        t.Name,
			basePrice:   t.Price,
			paymentLink: t.PaymentLink,
			singleUnit:  true,
		}, nil

	case model.PurchaseModule:
		p, err := s.productRepo.GetByID(req.ProductID)
		if err != nil {
			return nil, mapProductErr(err)
		}
		m, ok := p.Tree().Module(req.ItemID)
		if !ok {
			return nil, ErrModuleNotFound
		}
		if !m.IsLocked || m.Price == nil {
			return nil, ErrModuleNotForSale
		}
		link := m.PaymentLink
		if link == "" {
			link = p.PaymentLink
		}
		return &purchaseItem{
			kind:        model.PurchaseModule,
			id:          m.ID,
			name:        p.Title + " - " + m.Title,
			basePrice:   *m.Price,
			paymentLink: link,
			singleUnit:  true,
		}, nil
	}
	return nil, ErrUnknownPurchaseKind
}

// publish 推送新订单事件，失败只记录日志
func (s *CheckoutService) publish(ctx context.Context, order *model.Order, symbol string, log *logrus.Entry) {
	if s.publisher == nil {
		return
	}
	ev := &pubsub.OrderEvent{
		Type:         pubsub.EventOrderCreated,
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		CustomerName: order.CustomerName,
		Kind:         string(order.Kind),
		ItemName:     order.Items[0].Name,
		Total:        order.Total,
		Display:      pricing.FormatAmount(symbol, order.Total),
		Status:       string(order.Status),
		Date:         order.Date,
	}
	if err := s.publisher.PublishOrder(ctx, ev); err != nil {
		log.WithError(err).Warn("failed to publish order event")
	}
}

// enqueueReceipt 投递收据邮件，顾客没有邮箱时跳过
func (s *CheckoutService) enqueueReceipt(ctx context.Context, order *model.Order, symbol string, log *logrus.Entry) {
	if s.receipts == nil || order.CustomerEmail == "" {
		return
	}
	job := &queue.ReceiptJob{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Subtotal:      pricing.FormatAmount(symbol, order.Subtotal),
		Discount:      pricing.FormatAmount(symbol, order.Discount),
		Total:         pricing.FormatAmount(symbol, order.Total),
		CouponCode:    order.CouponCode,
	}
	for _, it := range order.Items {
		job.Lines = append(job.Lines, queue.ReceiptLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	if err := s.receipts.Push(ctx, job); err != nil {
		log.WithError(err).Warn("failed to enqueue receipt")
	}
}
