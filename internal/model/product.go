package model

import (
	"time"

	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
)

type ProductCategory string

const (
	CategoryEbook  ProductCategory = "ebook"
	CategoryCourse ProductCategory = "course"
)

type Product struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      ProductCategory  `json:"category"` // ebook, course
	Price         float64          `json:"price"`
	SalePrice     *float64         `json:"sale_price,omitempty"`
	SaleExpiresAt *time.Time       `json:"sale_expires_at,omitempty"`
	ImageURL      string           `json:"image_url,omitempty"`
	PaymentLink   string           `json:"payment_link,omitempty"`
	Content       string           `json:"content,omitempty"` // 电子书富文本
	Modules       *coursetree.Tree `json:"modules"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Tree 返回课程内容树，未设置时为空树
func (p *Product) Tree() *coursetree.Tree {
	if p.Modules == nil {
		return coursetree.New()
	}
	return p.Modules
}
