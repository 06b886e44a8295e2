package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/pricing"
	"github.com/qs3c/course_store_server/internal/repository"
)

var (
	ErrCouponNotFound   = errors.New("优惠券不存在")
	ErrCouponCodeExists = errors.New("优惠码已存在")
	ErrInvalidExpiry    = errors.New("过期日期格式应为 YYYY-MM-DD")
	ErrInvalidDiscount  = errors.New("折扣数值不合法")
)

type CouponService struct {
	couponRepo *repository.CouponRepository
	settings   *repository.SettingsRepository
	log        *logrus.Entry
	now        func() time.Time
}

func NewCouponService(couponRepo *repository.CouponRepository, settings *repository.SettingsRepository, log *logrus.Logger) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		settings:   settings,
		log:        log.WithField("service", "coupon"),
		now:        time.Now,
	}
}

func (s *CouponService) List() []model.Coupon {
	return s.couponRepo.List()
}

func (s *CouponService) Get(id string) (*model.Coupon, error) {
	c, err := s.couponRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create 创建优惠券，券码忽略大小写唯一
func (s *CouponService) Create(ctx context.Context, req *dto.CouponRequest) (*model.Coupon, error) {
	if err := validateCoupon(req); err != nil {
		return nil, err
	}
	if _, err := s.couponRepo.GetByCode(req.Code); err == nil {
		return nil, ErrCouponCodeExists
	}

	coupon := &model.Coupon{ID: uuid.NewString(), IsActive: true}
	applyCouponRequest(coupon, req)

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrPersist) {
			return coupon, err
		}
		return nil, err
	}
	s.log.WithField("code", coupon.Code).Info("coupon created")
	return coupon, nil
}

// Update 更新优惠券，保留已使用次数
func (s *CouponService) Update(ctx context.Context, id string, req *dto.CouponRequest) (*model.Coupon, error) {
	if err := validateCoupon(req); err != nil {
		return nil, err
	}

	coupon, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if other, err := s.couponRepo.GetByCode(req.Code); err == nil && other.ID != id {
		return nil, ErrCouponCodeExists
	}
	applyCouponRequest(coupon, req)

	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrPersist) {
			return coupon, err
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCouponNotFound
		}
		return err
	}
	return nil
}

// Check 按券码校验，找不到时返回 not-found 原因
func (s *CouponService) Check(code string) (*model.Coupon, pricing.Validity) {
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, pricing.CheckCoupon(nil, s.now(), s.settings.Get().Location())
	}
	return coupon, pricing.CheckCoupon(coupon, s.now(), s.settings.Get().Location())
}

// sweepable 已过期或次数用尽
func (s *CouponService) sweepable() func(*model.Coupon) bool {
	now := s.now()
	loc := s.settings.Get().Location()
	return func(c *model.Coupon) bool {
		return pricing.Expired(c, now, loc) || c.UsedCount >= c.UsageLimit
	}
}

// DueForSweep 返回下一次清理会停用的券码
func (s *CouponService) DueForSweep() []string {
	match := s.sweepable()
	var codes []string
	for _, c := range s.couponRepo.List() {
		c := c
		if c.IsActive && match(&c) {
			codes = append(codes, c.Code)
		}
	}
	return codes
}

// SweepCoupons 停用已过期或次数用尽的优惠券
func (s *CouponService) SweepCoupons(ctx context.Context) (int, error) {
	n, err := s.couponRepo.DeactivateWhere(ctx, s.sweepable())
	if n > 0 {
		s.log.WithField("count", n).Info("coupons deactivated")
	}
	return n, err
}

func validateCoupon(req *dto.CouponRequest) error {
	if strings.TrimSpace(req.Code) == "" {
		return ErrInvalidDiscount
	}
	if req.Value < 0 {
		return ErrInvalidDiscount
	}
	if model.DiscountType(req.DiscountType) == model.DiscountPercentage && req.Value > 100 {
		return ErrInvalidDiscount
	}
	if req.ExpiryDate != "" {
		if _, err := time.Parse(model.ExpiryDateLayout, req.ExpiryDate); err != nil {
			return ErrInvalidExpiry
		}
	}
	return nil
}

func applyCouponRequest(c *model.Coupon, req *dto.CouponRequest) {
	c.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	c.DiscountType = model.DiscountType(req.DiscountType)
	c.Value = req.Value
	c.ExpiryDate = req.ExpiryDate
	c.UsageLimit = req.UsageLimit
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}
