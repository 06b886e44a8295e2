package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
	"github.com/qs3c/course_store_server/internal/pkg/pricing"
	"github.com/qs3c/course_store_server/internal/repository"
)

var (
	ErrProductNotFound = errors.New("商品不存在")
	ErrInvalidProduct  = errors.New("商品信息不合法")
	ErrModuleNotFound  = errors.New("模块不存在")
	ErrFileNotFound    = errors.New("文件不存在")
	ErrDuplicateModule = errors.New("模块 ID 已存在")
	ErrDuplicateFile   = errors.New("文件 ID 已存在")
	ErrNotRootModule   = errors.New("只能删除顶层模块")
	ErrInvalidFileType = errors.New("不支持的文件类型")
	ErrNegativePrice   = errors.New("模块价格不能为负数")
)

type ProductService struct {
	productRepo *repository.ProductRepository
	settings    *repository.SettingsRepository
	log         *logrus.Entry
	now         func() time.Time
}

func NewProductService(productRepo *repository.ProductRepository, settings *repository.SettingsRepository, log *logrus.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		settings:    settings,
		log:         log.WithField("service", "product"),
		now:         time.Now,
	}
}

// List 商品列表（不含大纲）
func (s *ProductService) List() []dto.ProductView {
	products := s.productRepo.List()
	symbol := s.settings.Get().CurrencySymbol
	now := s.now()

	views := make([]dto.ProductView, 0, len(products))
	for i := range products {
		views = append(views, buildProductView(&products[i], symbol, now, false))
	}
	return views
}

// Get 商品详情，课程附带大纲
func (s *ProductService) Get(id string) (*dto.ProductView, error) {
	p, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, mapProductErr(err)
	}
	view := buildProductView(p, s.settings.Get().CurrencySymbol, s.now(), true)
	return &view, nil
}

// GetForEdit 后台编辑用，返回包含全部文件的完整商品
func (s *ProductService) GetForEdit(id string) (*model.Product, error) {
	p, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, mapProductErr(err)
	}
	return p, nil
}

// Create 创建商品。写入存储失败时仍返回商品，错误包装 repository.ErrPersist
func (s *ProductService) Create(ctx context.Context, req *dto.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product := &model.Product{ID: uuid.NewString(), Modules: coursetree.New()}
	applyProductRequest(product, req)

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrPersist) {
			return product, err
		}
		return nil, err
	}
	s.log.WithField("product_id", product.ID).Info("product created")
	return product, nil
}

// Update 更新商品基本信息，课程目录保持不变
func (s *ProductService) Update(ctx context.Context, id string, req *dto.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, mapProductErr(err)
	}
	applyProductRequest(product, req)

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrPersist) {
			return product, err
		}
		return nil, mapProductErr(err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return mapProductErr(err)
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

// AddModule 新增模块，ParentID 为空时追加到顶层
func (s *ProductService) AddModule(ctx context.Context, productID string, req *dto.ModuleRequest) (*model.Product, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, ErrNegativePrice
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	m := coursetree.Module{
		ID:          id,
		Title:       req.Title,
		IsLocked:    req.IsLocked,
		Price:       req.Price,
		PaymentLink: req.PaymentLink,
	}
	return s.editTree(ctx, productID, func(t *coursetree.Tree) (*coursetree.Tree, error) {
		return t.InsertModule(req.ParentID, m)
	})
}

func (s *ProductService) UpdateModule(ctx context.Context, productID, moduleID string, req *dto.ModuleUpdateRequest) (*model.Product, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, ErrNegativePrice
	}
	patch := coursetree.ModulePatch{
		Title:       req.Title,
		IsLocked:    req.IsLocked,
		Price:       req.Price,
		ClearPrice:  req.ClearPrice,
		PaymentLink: req.PaymentLink,
	}
	return s.editTree(ctx, productID, func(t *coursetree.Tree) (*coursetree.Tree, error) {
		return t.UpdateModule(moduleID, patch)
	})
}

// DeleteModule 删除任意层级的模块及其子树
func (s *ProductService) DeleteModule(ctx context.Context, productID, moduleID string) (*model.Product, error) {
	return s.editTree(ctx, productID, func(t *coursetree.Tree) (*coursetree.Tree, error) {
		return t.DeleteModule(moduleID)
	})
}

// DeleteRootModule 只删除顶层模块
func (s *ProductService) DeleteRootModule(ctx context.Context, productID, moduleID string) (*model.Product, error) {
	return s.editTree(ctx, productID, func(t *coursetree.Tree) (*coursetree.Tree, error) {
		return t.DeleteRootModule(moduleID)
	})
}

func (s *ProductService) AddFile(ctx context.Context, productID, moduleID string, req *dto.FileRequest) (*model.Product, error) {
	fileType := coursetree.FileType(req.Type)
	if !fileType.Valid() {
		return nil, ErrInvalidFileType
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	f := coursetree.File{
		ID:      id,
		Name:    req.Name,
		Type:    fileType,
		URL:     req.URL,
		Content: req.Content,
	}
	return s.editTree(ctx, productID, func(t *coursetree.Tree) (*coursetree.Tree, error) {
		return t.InsertFile(moduleID, f)
	})
}

func (s *ProductService) UpdateFile(ctx context.Context, productID, moduleID, fileID string, req *dto.FileUpdateRequest) (*model.Product, error) {
	patch := coursetree.FilePatch{
		Name:    req.Name,
		URL:     req.URL,
		Content: req.Content,
	}
	if req.Type != nil {
		fileType := coursetree.FileType(*req.Type)
		if !fileType.Valid() {
			return nil, ErrInvalidFileType
		}
		patch.Type = &fileType
	}
	return s.editTree(ctx, productID, func(t *coursetree.Tree) (*coursetree.Tree, error) {
		return t.UpdateFile(moduleID, fileID, patch)
	})
}

func (s *ProductService) DeleteFile(ctx context.Context, productID, moduleID, fileID string) (*model.Product, error) {
	return s.editTree(ctx, productID, func(t *coursetree.Tree) (*coursetree.Tree, error) {
		return t.DeleteFile(moduleID, fileID)
	})
}

func (s *ProductService) editTree(ctx context.Context, productID string, fn func(*coursetree.Tree) (*coursetree.Tree, error)) (*model.Product, error) {
	product, err := s.productRepo.UpdateModules(ctx, productID, fn)
	if err != nil {
		if product != nil && errors.Is(err, repository.ErrPersist) {
			return product, err
		}
		return nil, mapProductErr(err)
	}
	return product, nil
}

func validateProduct(req *dto.ProductRequest) error {
	switch model.ProductCategory(req.Category) {
	case model.CategoryEbook, model.CategoryCourse:
	default:
		return ErrInvalidProduct
	}
	if req.Price < 0 || (req.SalePrice != nil && *req.SalePrice < 0) {
		return ErrInvalidProduct
	}
	return nil
}

func applyProductRequest(p *model.Product, req *dto.ProductRequest) {
	p.Title = req.Title
	p.Description = req.Description
	p.Category = model.ProductCategory(req.Category)
	p.Price = req.Price
	p.SalePrice = req.SalePrice
	p.SaleExpiresAt = req.SaleExpiresAt
	p.ImageURL = req.ImageURL
	p.PaymentLink = req.PaymentLink
	p.Content = req.Content
}

// mapProductErr 将仓储和课程目录错误转换为业务错误
func mapProductErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, coursetree.ErrModuleNotFound):
		return ErrModuleNotFound
	case errors.Is(err, coursetree.ErrFileNotFound):
		return ErrFileNotFound
	case errors.Is(err, coursetree.ErrDuplicateModule):
		return ErrDuplicateModule
	case errors.Is(err, coursetree.ErrDuplicateFile):
		return ErrDuplicateFile
	case errors.Is(err, coursetree.ErrNotRootModule):
		return ErrNotRootModule
	}
	return err
}

func buildProductView(p *model.Product, symbol string, now time.Time, withOutline bool) dto.ProductView {
	price := pricing.EffectiveUnitPrice(p.Price, p.SalePrice, p.SaleExpiresAt, now)
	view := dto.ProductView{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Category:       string(p.Category),
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		SaleExpiresAt:  p.SaleExpiresAt,
		OnSale:         pricing.SaleActive(p.SalePrice, p.SaleExpiresAt, now),
		EffectivePrice: price,
		DisplayPrice:   pricing.FormatAmount(symbol, price),
		ImageURL:       p.ImageURL,
	}
	if withOutline && p.Category == model.CategoryCourse {
		view.Outline = buildOutline(p.Tree().Modules())
	}
	return view
}

func buildOutline(modules []coursetree.Module) []dto.OutlineModule {
	out := make([]dto.OutlineModule, 0, len(modules))
	for _, m := range modules {
		out = append(out, dto.OutlineModule{
			ID:        m.ID,
			Title:     m.Title,
			FileCount: len(m.Files),
			IsLocked:  m.IsLocked,
			Modules:   buildOutline(m.Modules),
		})
	}
	return out
}
