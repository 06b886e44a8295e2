package model

import (
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

// Valid 是否为合法的订单状态
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type PurchaseKind string

const (
	PurchaseProduct      PurchaseKind = "product"
	PurchaseSubscription PurchaseKind = "subscription"
	PurchaseModule       PurchaseKind = "module"
)

type OrderItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"` // 单价，展示格式
}

type Order struct {
	ID            string       `json:"id"`
	CustomerID    int64        `json:"customer_id"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	Date          time.Time    `json:"date"`
	Kind          PurchaseKind `json:"kind"` // product, subscription, module
	Items         []OrderItem  `json:"items"`
	Subtotal      float64      `json:"subtotal"`
	Discount      float64      `json:"discount"`
	Total         float64      `json:"total"`
	CouponCode    string       `json:"coupon_code,omitempty"`
	Status        OrderStatus  `json:"status"`
}
