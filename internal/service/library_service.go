package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/access"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
	"github.com/qs3c/course_store_server/internal/pkg/pricing"
	"github.com/qs3c/course_store_server/internal/repository"
)

var (
	ErrNotPurchased = errors.New("尚未购买该商品")
	ErrNotCourse    = errors.New("该商品不是课程")
	ErrNotEbook     = errors.New("该商品不是电子书")
)

// Viewer 当前访问内容的用户
type Viewer struct {
	UserID int64
	Admin  bool
}

// LibraryService 顾客已购内容和课程播放
type LibraryService struct {
	productRepo  *repository.ProductRepository
	tierRepo     *repository.TierRepository
	purchaseRepo *repository.PurchaseRepository
	settings     *repository.SettingsRepository
	log          *logrus.Entry
	now          func() time.Time
}

func NewLibraryService(
	productRepo *repository.ProductRepository,
	tierRepo *repository.TierRepository,
	purchaseRepo *repository.PurchaseRepository,
	settings *repository.SettingsRepository,
	log *logrus.Logger,
) *LibraryService {
	return &LibraryService{
		productRepo:  productRepo,
		tierRepo:     tierRepo,
		purchaseRepo: purchaseRepo,
		settings:     settings,
		log:          log.WithField("service", "library"),
		now:          time.Now,
	}
}

// Library 已购买的 ID、可访问的商品和生效中的订阅
func (s *LibraryService) Library(ctx context.Context, userID int64) (*dto.LibraryResponse, error) {
	purchased, err := s.purchaseRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	tiers := s.tierRepo.List()
	symbol := s.settings.Get().CurrencySymbol
	now := s.now()

	resp := &dto.LibraryResponse{
		PurchasedIDs: purchased.IDs(),
		Products:     []dto.ProductView{},
		Tiers:        access.ActiveTiers(purchased, tiers),
	}
	if resp.Tiers == nil {
		resp.Tiers = []model.SubscriptionTier{}
	}

	products := s.productRepo.List()
	for i := range products {
		if canOpen(&products[i], purchased, tiers) {
			resp.Products = append(resp.Products, buildProductView(&products[i], symbol, now, false))
		}
	}
	return resp, nil
}

// Player 课程播放页。锁定模块不返回文件，子模块单独判断
func (s *LibraryService) Player(ctx context.Context, viewer Viewer, productID string) (*dto.PlayerView, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, mapProductErr(err)
	}
	if product.Category != model.CategoryCourse {
		return nil, ErrNotCourse
	}

	purchased, err := s.purchaseRepo.Get(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	tiers := s.tierRepo.List()
	if !viewer.Admin && !canOpen(product, purchased, tiers) {
		return nil, ErrNotPurchased
	}

	b := playerBuilder{
		productID: product.ID,
		purchased: purchased,
		tiers:     tiers,
		admin:     viewer.Admin,
		symbol:    s.settings.Get().CurrencySymbol,
	}
	view := &dto.PlayerView{
		ProductID: product.ID,
		Title:     product.Title,
		Modules:   b.build(product.Tree().Modules()),
	}
	if f, moduleID, ok := firstUnlocked(view.Modules); ok {
		view.DefaultContent = &f
		view.DefaultModule = moduleID
	}
	return view, nil
}

// Ebook 电子书阅读内容
func (s *LibraryService) Ebook(ctx context.Context, viewer Viewer, productID string) (*dto.EbookView, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, mapProductErr(err)
	}
	if product.Category != model.CategoryEbook {
		return nil, ErrNotEbook
	}

	if !viewer.Admin {
		purchased, err := s.purchaseRepo.Get(ctx, viewer.UserID)
		if err != nil {
			return nil, err
		}
		if !access.OwnsProduct(product.ID, purchased, s.tierRepo.List()) {
			return nil, ErrNotPurchased
		}
	}

	return &dto.EbookView{
		ProductID: product.ID,
		Title:     product.Title,
		Content:   product.Content,
	}, nil
}

// canOpen 拥有商品，或单独购买过其中某个模块
func canOpen(p *model.Product, purchased *access.Purchased, tiers []model.SubscriptionTier) bool {
	if access.OwnsProduct(p.ID, purchased, tiers) {
		return true
	}
	for _, id := range purchased.IDs() {
		if _, ok := p.Tree().Module(id); ok {
			return true
		}
	}
	return false
}

type playerBuilder struct {
	productID string
	purchased *access.Purchased
	tiers     []model.SubscriptionTier
	admin     bool
	symbol    string
}

func (b *playerBuilder) build(modules []coursetree.Module) []dto.PlayerModule {
	out := make([]dto.PlayerModule, 0, len(modules))
	for _, m := range modules {
		locked := !b.admin && access.IsLocked(m, b.productID, b.purchased, b.tiers)
		pm := dto.PlayerModule{
			ID:      m.ID,
			Title:   m.Title,
			Locked:  locked,
			Files:   []coursetree.File{},
			Modules: b.build(m.Modules),
		}
		if locked {
			pm.Price = m.Price
			pm.PaymentLink = m.PaymentLink
			if m.Price != nil {
				pm.DisplayPrice = pricing.FormatAmount(b.symbol, *m.Price)
			}
		} else {
			pm.Files = m.Files
		}
		out = append(out, pm)
	}
	return out
}

// firstUnlocked 文档顺序下第一个可访问的文件
func firstUnlocked(modules []dto.PlayerModule) (coursetree.File, string, bool) {
	for _, m := range modules {
		if !m.Locked && len(m.Files) > 0 {
			return m.Files[0], m.ID, true
		}
		if f, id, ok := firstUnlocked(m.Modules); ok {
			return f, id, true
		}
	}
	return coursetree.File{}, "", false
}
