package repository

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
)

type ProductRepository struct {
	products *collection[model.Product]
}

func NewProductRepository(store kvstore.Store, log *logrus.Logger) *ProductRepository {
	return &ProductRepository{products: newCollection[model.Product](store, KeyProducts, log)}
}

func (r *ProductRepository) Load(ctx context.Context) error {
	return r.products.load(ctx, nil)
}

func (r *ProductRepository) List() []model.Product {
	return r.products.all()
}

func (r *ProductRepository) GetByID(id string) (*model.Product, error) {
	p, ok := r.products.find(func(p *model.Product) bool { return p.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	return r.products.mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		now := time.Now()
		product.CreatedAt = now
		product.UpdatedAt = now
		return append(items, *product), nil
	})
}

// Update 整体替换商品，保留创建时间
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	return r.products.mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		i := indexOf(items, func(p *model.Product) bool { return p.ID == product.ID })
		if i < 0 {
			return nil, ErrNotFound
		}
		product.CreatedAt = items[i].CreatedAt
		product.UpdatedAt = time.Now()
		items[i] = *product
		return items, nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.products.mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		i := indexOf(items, func(p *model.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// UpdateModules 在集合锁内对课程目录应用一次变换
func (r *ProductRepository) UpdateModules(ctx context.Context, id string, fn func(*coursetree.Tree) (*coursetree.Tree, error)) (*model.Product, error) {
	var updated model.Product
	err := r.products.mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		i := indexOf(items, func(p *model.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		tree, err := fn(items[i].Tree())
		if err != nil {
			return nil, err
		}
		items[i].Modules = tree
		items[i].UpdatedAt = time.Now()
		updated = items[i]
		return items, nil
	})
	if err != nil && updated.ID == "" {
		return nil, err
	}
	return &updated, err
}
