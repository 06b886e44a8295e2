package pricing

import (
	"strings"
	"time"

	"github.com/qs3c/course_store_server/internal/model"
)

// 优惠券不可用原因
const (
	ReasonNotFound       = "not-found"
	ReasonInactive       = "inactive"
	ReasonExpired        = "expired"
	ReasonUsageExhausted = "usage-exhausted"
)

// Validity 优惠券校验结果
type Validity struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// CheckCoupon reports whether the coupon can be applied at now. The expiry
// date is a calendar day in loc and stays valid until the end of that day.
// An empty expiry date never expires; an unparseable one counts as expired.
func CheckCoupon(c *model.Coupon, now time.Time, loc *time.Location) Validity {
	if c == nil {
		return Validity{Reason: ReasonNotFound}
	}
	if !c.IsActive {
		return Validity{Reason: ReasonInactive}
	}
	if Expired(c, now, loc) {
		return Validity{Reason: ReasonExpired}
	}
	if c.UsedCount >= c.UsageLimit {
		return Validity{Reason: ReasonUsageExhausted}
	}
	return Validity{OK: true}
}

// Expired 是否已过过期日（当天仍有效）
func Expired(c *model.Coupon, now time.Time, loc *time.Location) bool {
	if c.ExpiryDate == "" {
		return false
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(model.ExpiryDateLayout, c.ExpiryDate, loc)
	if err != nil {
		return true
	}
	endOfDay := day.AddDate(0, 0, 1)
	return !now.In(loc).Before(endOfDay)
}

// FindCoupon 按券码查找（忽略大小写的完全匹配），返回下标
func FindCoupon(coupons []model.Coupon, code string) (int, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return -1, false
	}
	for i := range coupons {
		if strings.EqualFold(strings.TrimSpace(coupons[i].Code), code) {
			return i, true
		}
	}
	return -1, false
}
