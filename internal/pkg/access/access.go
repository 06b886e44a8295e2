// Package access decides whether course content is unlocked for a customer.
//
// Purchased identifiers are the only access signal. A single set mixes
// product, module and subscription-tier ids.
package access

import (
	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
)

// Purchased 已购买的 ID 集合（商品、模块、订阅套餐）
type Purchased struct {
	ids   map[string]struct{}
	order []string
}

// NewPurchased 由 ID 列表构建集合，重复项合并
func NewPurchased(ids ...string) *Purchased {
	p := &Purchased{ids: make(map[string]struct{}, len(ids))}
	p.Add(ids...)
	return p
}

// Add 幂等添加，返回是否有新 ID 加入
func (p *Purchased) Add(ids ...string) bool {
	added := false
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := p.ids[id]; ok {
			continue
		}
		p.ids[id] = struct{}{}
		p.order = append(p.order, id)
		added = true
	}
	return added
}

func (p *Purchased) Has(id string) bool {
	if p == nil {
		return false
	}
	_, ok := p.ids[id]
	return ok
}

// IDs 按首次加入顺序返回
func (p *Purchased) IDs() []string {
	if p == nil {
		return []string{}
	}
	return append([]string{}, p.order...)
}

func (p *Purchased) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// ActiveTiers 返回已购买的订阅套餐
func ActiveTiers(purchased *Purchased, tiers []model.SubscriptionTier) []model.SubscriptionTier {
	var out []model.SubscriptionTier
	for _, t := range tiers {
		if purchased.Has(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// HasProductAccess reports whether a purchased subscription tier grants
// access to the whole product.
func HasProductAccess(productID string, purchased *Purchased, tiers []model.SubscriptionTier) bool {
	for _, t := range ActiveTiers(purchased, tiers) {
		if t.Unlocks(productID) {
			return true
		}
	}
	return false
}

// OwnsProduct 直接购买或通过订阅获得商品
func OwnsProduct(productID string, purchased *Purchased, tiers []model.SubscriptionTier) bool {
	return purchased.Has(productID) || HasProductAccess(productID, purchased, tiers)
}

// IsLocked decides whether a module's content is hidden from the customer.
//
// An unflagged module is always open. A flagged module opens when its own id
// was bought, or when any purchased tier unlocks the product that owns it.
// Tier access is product-wide: a tier that includes the product opens every
// locked module inside it.
func IsLocked(m coursetree.Module, productID string, purchased *Purchased, tiers []model.SubscriptionTier) bool {
	if !m.IsLocked {
		return false
	}
	if purchased.Has(m.ID) {
		return false
	}
	return !HasProductAccess(productID, purchased, tiers)
}
