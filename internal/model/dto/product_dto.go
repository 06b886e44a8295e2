package dto

import (
	"time"

	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
)

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Title         string     `json:"title" binding:"required,max=200"`
	Description   string     `json:"description"`
	Category      string     `json:"category" binding:"required,oneof=ebook course"`
	Price         float64    `json:"price" binding:"gte=0"`
	SalePrice     *float64   `json:"sale_price"`
	SaleExpiresAt *time.Time `json:"sale_expires_at"`
	ImageURL      string     `json:"image_url"`
	PaymentLink   string     `json:"payment_link"`
	Content       string     `json:"content"`
}

// ModuleRequest 新增模块请求，ParentID 为空表示顶层
type ModuleRequest struct {
	ParentID    string   `json:"parent_id"`
	ID          string   `json:"id"`
	Title       string   `json:"title" binding:"required,max=200"`
	IsLocked    bool     `json:"is_locked"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	PaymentLink string   `json:"payment_link"`
}

// ModuleUpdateRequest 更新模块请求，字段为空表示不修改
type ModuleUpdateRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=200"`
	IsLocked    *bool    `json:"is_locked"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	ClearPrice  bool     `json:"clear_price"`
	PaymentLink *string  `json:"payment_link"`
}

// FileRequest 新增文件请求
type FileRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name" binding:"required,max=200"`
	Type    string `json:"type" binding:"required"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// FileUpdateRequest 更新文件请求
type FileUpdateRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=200"`
	Type    *string `json:"type"`
	URL     *string `json:"url"`
	Content *string `json:"content"`
}

// ProductView 商品详情，附带当前价格
type ProductView struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Price          float64         `json:"price"`
	SalePrice      *float64        `json:"sale_price,omitempty"`
	SaleExpiresAt  *time.Time      `json:"sale_expires_at,omitempty"`
	OnSale         bool            `json:"on_sale"`
	EffectivePrice float64         `json:"effective_price"`
	DisplayPrice   string          `json:"display_price"`
	ImageURL       string          `json:"image_url,omitempty"`
	Outline        []OutlineModule `json:"outline,omitempty"`
}

// OutlineModule 商品页展示的课程大纲，不含文件内容
type OutlineModule struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	FileCount int             `json:"file_count"`
	IsLocked  bool            `json:"is_locked"`
	Modules   []OutlineModule `json:"modules"`
}

// PlayerModule 课程播放页的模块，锁定模块不返回文件
type PlayerModule struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Locked       bool              `json:"locked"`
	Price        *float64          `json:"price,omitempty"`
	DisplayPrice string            `json:"display_price,omitempty"`
	PaymentLink  string            `json:"payment_link,omitempty"`
	Files        []coursetree.File `json:"files"`
	Modules      []PlayerModule    `json:"modules"`
}

// PlayerView 课程播放页
type PlayerView struct {
	ProductID      string           `json:"product_id"`
	Title          string           `json:"title"`
	Modules        []PlayerModule   `json:"modules"`
	DefaultContent *coursetree.File `json:"default_content"`
	DefaultModule  string           `json:"default_module,omitempty"`
}

// EbookView 电子书阅读页
type EbookView struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}
