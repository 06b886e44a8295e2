package model

import (
	"time"
)

type AccessMode string

const (
	AccessNone     AccessMode = "none"
	AccessAll      AccessMode = "all"
	AccessSpecific AccessMode = "specific"
)

type SubscriptionTier struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Price              float64    `json:"price"`
	AccessMode         AccessMode `json:"access_mode"` // none, all, specific
	UnlockedProductIDs []string   `json:"unlocked_product_ids"`
	Features           []string   `json:"features,omitempty"`
	PaymentLink        string     `json:"payment_link,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Unlocks 该套餐是否开放指定商品
func (t *SubscriptionTier) Unlocks(productID string) bool {
	switch t.AccessMode {
	case AccessAll:
		return true
	case AccessSpecific:
		for _, id := range t.UnlockedProductIDs {
			if id == productID {
				return true
			}
		}
	}
	return false
}
