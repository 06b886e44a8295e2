package model

import (
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// ExpiryDateLayout 优惠券过期日期格式（按自然日，当天 23:59:59 前有效）
const ExpiryDateLayout = "2006-01-02"

type Coupon struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	DiscountType DiscountType `json:"discount_type"` // percentage, fixed
	Value        float64      `json:"value"`
	ExpiryDate   string       `json:"expiry_date"`
	IsActive     bool         `json:"is_active"`
	UsageLimit   int          `json:"usage_limit"`
	UsedCount    int          `json:"used_count"`
	CreatedAt    time.Time    `json:"created_at"`
}
