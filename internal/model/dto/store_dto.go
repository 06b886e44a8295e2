package dto

import (
	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/pricing"
)

// QuoteRequest 询价请求，Kind 为 module 时 ProductID 为模块所属商品
type QuoteRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=product subscription module"`
	ItemID     string `json:"item_id" binding:"required"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity" binding:"gte=0"`
	CouponCode string `json:"coupon_code"`
}

// CheckoutRequest 确认付款后记录订单
type CheckoutRequest struct {
	QuoteRequest
	PaymentConfirmed bool `json:"payment_confirmed"`
}

// CouponResult 优惠券校验结果
type CouponResult struct {
	Code   string `json:"code"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// AmountDisplay 带货币符号的金额
type AmountDisplay struct {
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
	Discount  string `json:"discount"`
	Total     string `json:"total"`
}

// QuoteResponse 询价结果
type QuoteResponse struct {
	Kind        string            `json:"kind"`
	ItemID      string            `json:"item_id"`
	ItemName    string            `json:"item_name"`
	Quantity    int               `json:"quantity"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
	Display     AmountDisplay     `json:"display"`
	Coupon      *CouponResult     `json:"coupon,omitempty"`
	PaymentLink string            `json:"payment_link"`
}

// CheckoutResponse 下单结果
type CheckoutResponse struct {
	Order        *model.Order  `json:"order"`
	Coupon       *CouponResult `json:"coupon,omitempty"`
	PurchasedIDs []string      `json:"purchased_ids"`
}

// CouponRequest 创建/更新优惠券
type CouponRequest struct {
	Code         string  `json:"code" binding:"required,max=50"`
	DiscountType string  `json:"discount_type" binding:"required,oneof=percentage fixed"`
	Value        float64 `json:"value" binding:"gte=0"`
	ExpiryDate   string  `json:"expiry_date"`
	IsActive     *bool   `json:"is_active"`
	UsageLimit   int     `json:"usage_limit" binding:"gte=0"`
}

// TierRequest 创建/更新订阅档位
type TierRequest struct {
	Name               string   `json:"name" binding:"required,max=100"`
	Price              float64  `json:"price" binding:"gte=0"`
	AccessMode         string   `json:"access_mode" binding:"required,oneof=none all specific"`
	UnlockedProductIDs []string `json:"unlocked_product_ids"`
	Features           []string `json:"features"`
	PaymentLink        string   `json:"payment_link"`
}

// OrderStatusRequest 修改订单状态
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// LibraryResponse 我的内容
type LibraryResponse struct {
	PurchasedIDs []string                 `json:"purchased_ids"`
	Products     []ProductView            `json:"products"`
	Tiers        []model.SubscriptionTier `json:"tiers"`
}

// SettingsRequest 店铺设置
type SettingsRequest struct {
	Name           string `json:"name" binding:"max=100"`
	CurrencySymbol string `json:"currency_symbol" binding:"max=8"`
	Timezone       string `json:"timezone"`
	SupportEmail   string `json:"support_email" binding:"omitempty,email"`
}

// CouponApplyRequest 购物车中校验优惠码
type CouponApplyRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// CouponApplyResponse 优惠码校验结果，有效时附带折扣信息
type CouponApplyResponse struct {
	CouponResult
	DiscountType string  `json:"discount_type,omitempty"`
	Value        float64 `json:"value,omitempty"`
}
