package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/qs3c/course_store_server/internal/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// Input 计价输入
type Input struct {
	BasePrice     float64
	SalePrice     *float64
	SaleExpiresAt *time.Time
	Quantity      int
	Coupon        *model.Coupon // 已通过校验的优惠券，可为空
	Now           time.Time
}

// Breakdown 计价结果，金额保持完整精度，展示时再取两位小数
type Breakdown struct {
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}

// Calculate 计算小计、折扣和应付总额
func Calculate(in Input) (Breakdown, error) {
	if in.Quantity < 1 {
		return Breakdown{}, ErrInvalidQuantity
	}
	if in.BasePrice < 0 || (in.SalePrice != nil && *in.SalePrice < 0) {
		return Breakdown{}, ErrInvalidPrice
	}

	unit := EffectiveUnitPrice(in.BasePrice, in.SalePrice, in.SaleExpiresAt, in.Now)
	subtotal := unit * float64(in.Quantity)
	discount := Discount(subtotal, in.Coupon)

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	return Breakdown{
		UnitPrice: unit,
		Subtotal:  subtotal,
		Discount:  discount,
		Total:     total,
	}, nil
}

// EffectiveUnitPrice returns the sale price while the sale is running. A sale
// whose expiry is strictly before now falls back to the base price.
func EffectiveUnitPrice(base float64, sale *float64, saleExpiresAt *time.Time, now time.Time) float64 {
	if sale == nil {
		return base
	}
	if saleExpiresAt != nil && saleExpiresAt.Before(now) {
		return base
	}
	return *sale
}

// SaleActive 促销价当前是否生效
func SaleActive(sale *float64, saleExpiresAt *time.Time, now time.Time) bool {
	return sale != nil && (saleExpiresAt == nil || !saleExpiresAt.Before(now))
}

// Discount 计算优惠金额，结果在 [0, subtotal] 之间
func Discount(subtotal float64, c *model.Coupon) float64 {
	if c == nil || subtotal <= 0 {
		return 0
	}

	var d float64
	switch c.DiscountType {
	case model.DiscountFixed:
		d = math.Min(math.Max(c.Value, 0), subtotal)
	case model.DiscountPercentage:
		pct := math.Min(math.Max(c.Value, 0), 100)
		d = subtotal * pct / 100
	}
	return d
}

// Round2 四舍五入到两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount 金额展示格式，如 ₹598.00
func FormatAmount(symbol string, v float64) string {
	return fmt.Sprintf("%s%.2f", symbol, Round2(v))
}
