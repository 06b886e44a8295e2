package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
	"github.com/qs3c/course_store_server/internal/pkg/pricing"
)

type CouponRepository struct {
	coupons *collection[model.Coupon]
}

func NewCouponRepository(store kvstore.Store, log *logrus.Logger) *CouponRepository {
	return &CouponRepository{coupons: newCollection[model.Coupon](store, KeyCoupons, log)}
}

func (r *CouponRepository) Load(ctx context.Context) error {
	return r.coupons.load(ctx, nil)
}

func (r *CouponRepository) List() []model.Coupon {
	return r.coupons.all()
}

func (r *CouponRepository) GetByID(id string) (*model.Coupon, error) {
	c, ok := r.coupons.find(func(c *model.Coupon) bool { return c.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// GetByCode 忽略大小写和首尾空白匹配优惠码
func (r *CouponRepository) GetByCode(code string) (*model.Coupon, error) {
	items := r.coupons.all()
	i, ok := pricing.FindCoupon(items, code)
	if !ok {
		return nil, ErrNotFound
	}
	return &items[i], nil
}

func (r *CouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.coupons.mutate(ctx, func(items []model.Coupon) ([]model.Coupon, error) {
		coupon.CreatedAt = time.Now()
		return append(items, *coupon), nil
	})
}

func (r *CouponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	return r.coupons.mutate(ctx, func(items []model.Coupon) ([]model.Coupon, error) {
		i := indexOf(items, func(c *model.Coupon) bool { return c.ID == coupon.ID })
		if i < 0 {
			return nil, ErrNotFound
		}
		coupon.CreatedAt = items[i].CreatedAt
		items[i] = *coupon
		return items, nil
	})
}

func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	return r.coupons.mutate(ctx, func(items []model.Coupon) ([]model.Coupon, error) {
		i := indexOf(items, func(c *model.Coupon) bool { return c.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// ErrCouponUnavailable 预占时优惠券已不可用（停用、过期或次数用尽）
var ErrCouponUnavailable = errors.New("coupon no longer available")

// ReserveUsage 在集合锁内重新校验优惠券并占用一次使用次数，
// 不可用时返回 ErrCouponUnavailable 和具体原因，集合不做改动
func (r *CouponRepository) ReserveUsage(ctx context.Context, id string, now time.Time, loc *time.Location) (pricing.Validity, error) {
	var validity pricing.Validity
	err := r.coupons.mutate(ctx, func(items []model.Coupon) ([]model.Coupon, error) {
		i := indexOf(items, func(c *model.Coupon) bool { return c.ID == id })
		if i < 0 {
			validity = pricing.CheckCoupon(nil, now, loc)
			return nil, ErrNotFound
		}
		validity = pricing.CheckCoupon(&items[i], now, loc)
		if !validity.OK {
			return nil, ErrCouponUnavailable
		}
		items[i].UsedCount++
		return items, nil
	})
	return validity, err
}

// DeactivateWhere 停用所有满足条件的有效优惠券，返回停用数量
func (r *CouponRepository) DeactivateWhere(ctx context.Context, match func(*model.Coupon) bool) (int, error) {
	n := 0
	err := r.coupons.mutate(ctx, func(items []model.Coupon) ([]model.Coupon, error) {
		for i := range items {
			if items[i].IsActive && match(&items[i]) {
				items[i].IsActive = false
				n++
			}
		}
		return items, nil
	})
	return n, err
}
