package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000),
		Email:        &email,
		PasswordHash: &passwordHash,
		Role:         model.RoleCustomer,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithPassword 设置明文密码（保存 bcrypt 哈希）
func WithPassword(password string) func(*model.User) {
	return func(u *model.User) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		s := string(hash)
		u.PasswordHash = &s
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithGithubID 设置 GitHub 账号
func WithGithubID(id string) func(*model.User) {
	return func(u *model.User) {
		u.GithubID = &id
	}
}

// Seed 直接向存储写入一个 JSON 文档
func Seed(t *testing.T, store kvstore.Store, key string, v interface{}) {
	t.Helper()

	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to encode %s: %v", key, err)
	}
	if err := store.Set(context.Background(), key, raw); err != nil {
		t.Fatalf("Failed to seed %s: %v", key, err)
	}
}

// SampleCourse 课程目录：
//
//	intro (f-welcome)
//	advanced 锁定，单独解锁价 199 (f-deep)
//	  advanced-extra (f-extra)
func SampleCourse(t *testing.T) *coursetree.Tree {
	t.Helper()

	price := 199.0
	tree, err := coursetree.FromModules([]coursetree.Module{
		{
			ID:    "intro",
			Title: "Introduction",
			Files: []coursetree.File{
				{ID: "f-welcome", Name: "Welcome", Type: coursetree.FileTypeYouTube, URL: "https://youtu.be/abc"},
			},
		},
		{
			ID:          "advanced",
			Title:       "Advanced",
			IsLocked:    true,
			Price:       &price,
			PaymentLink: "https://pay.example.com/advanced",
			Files: []coursetree.File{
				{ID: "f-deep", Name: "Deep dive", Type: coursetree.FileTypePDF, URL: "https://cdn.example.com/deep.pdf"},
			},
			Modules: []coursetree.Module{
				{
					ID:    "advanced-extra",
					Title: "Extra",
					Files: []coursetree.File{
						{ID: "f-extra", Name: "Extra notes", Type: coursetree.FileTypeEbook, Content: "<p>notes</p>"},
					},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to build sample course: %v", err)
	}
	return tree
}

// TestProduct 构造商品，默认是价格 499 的课程
func TestProduct(id string, opts ...func(*model.Product)) model.Product {
	p := model.Product{
		ID:          id,
		Title:       "Product " + id,
		Category:    model.CategoryCourse,
		Price:       499,
		PaymentLink: "https://pay.example.com/" + id,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithSale 设置促销价和截止时间
func WithSale(price float64, expiresAt *time.Time) func(*model.Product) {
	return func(p *model.Product) {
		p.SalePrice = &price
		p.SaleExpiresAt = expiresAt
	}
}

// WithModules 设置课程目录
func WithModules(tree *coursetree.Tree) func(*model.Product) {
	return func(p *model.Product) {
		p.Modules = tree
	}
}

// TestCoupon 构造优惠券，默认是长期有效的 10% 折扣
func TestCoupon(code string, opts ...func(*model.Coupon)) model.Coupon {
	c := model.Coupon{
		ID:           "coupon-" + code,
		Code:         code,
		DiscountType: model.DiscountPercentage,
		Value:        10,
		IsActive:     true,
		UsageLimit:   100,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDiscount 设置折扣类型和数值
func WithDiscount(kind model.DiscountType, value float64) func(*model.Coupon) {
	return func(c *model.Coupon) {
		c.DiscountType = kind
		c.Value = value
	}
}

// WithExpiry 设置过期日期 YYYY-MM-DD
func WithExpiry(date string) func(*model.Coupon) {
	return func(c *model.Coupon) {
		c.ExpiryDate = date
	}
}

// WithUsage 设置使用上限和已使用次数
func WithUsage(limit, used int) func(*model.Coupon) {
	return func(c *model.Coupon) {
		c.UsageLimit = limit
		c.UsedCount = used
	}
}

// Inactive 停用优惠券
func Inactive(c *model.Coupon) {
	c.IsActive = false
}

// TestTier 构造订阅档位
func TestTier(id string, mode model.AccessMode, productIDs ...string) model.SubscriptionTier {
	return model.SubscriptionTier{
		ID:                 id,
		Name:               "Tier " + id,
		Price:              999,
		AccessMode:         mode,
		UnlockedProductIDs: productIDs,
		PaymentLink:        "https://pay.example.com/tier/" + id,
	}
}
