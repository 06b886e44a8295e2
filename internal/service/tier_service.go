package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/repository"
)

var (
	ErrTierNotFound = errors.New("订阅档位不存在")
	ErrInvalidTier  = errors.New("订阅档位配置不合法")
)

type TierService struct {
	tierRepo    *repository.TierRepository
	productRepo *repository.ProductRepository
	log         *logrus.Entry
}

func NewTierService(tierRepo *repository.TierRepository, productRepo *repository.ProductRepository, log *logrus.Logger) *TierService {
	return &TierService{
		tierRepo:    tierRepo,
		productRepo: productRepo,
		log:         log.WithField("service", "tier"),
	}
}

func (s *TierService) List() []model.SubscriptionTier {
	return s.tierRepo.List()
}

func (s *TierService) Get(id string) (*model.SubscriptionTier, error) {
	t, err := s.tierRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TierService) Create(ctx context.Context, req *dto.TierRequest) (*model.SubscriptionTier, error) {
	tier := &model.SubscriptionTier{ID: uuid.NewString()}
	if err := s.apply(tier, req); err != nil {
		return nil, err
	}

	if err := s.tierRepo.Create(ctx, tier); err != nil {
		if errors.Is(err, repository.ErrPersist) {
			return tier, err
		}
		return nil, err
	}
	s.log.WithField("tier_id", tier.ID).Info("subscription tier created")
	return tier, nil
}

func (s *TierService) Update(ctx context.Context, id string, req *dto.TierRequest) (*model.SubscriptionTier, error) {
	tier, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(tier, req); err != nil {
		return nil, err
	}

	if err := s.tierRepo.Update(ctx, tier); err != nil {
		if errors.Is(err, repository.ErrPersist) {
			return tier, err
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return tier, nil
}

func (s *TierService) Delete(ctx context.Context, id string) error {
	if err := s.tierRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTierNotFound
		}
		return err
	}
	return nil
}

// apply 写入请求字段；specific 模式下商品必须存在，其它模式清空商品列表
func (s *TierService) apply(tier *model.SubscriptionTier, req *dto.TierRequest) error {
	mode := model.AccessMode(req.AccessMode)
	switch mode {
	case model.AccessNone, model.AccessAll:
		tier.UnlockedProductIDs = []string{}
	case model.AccessSpecific:
		ids := make([]string, 0, len(req.UnlockedProductIDs))
		seen := make(map[string]struct{}, len(req.UnlockedProductIDs))
		for _, id := range req.UnlockedProductIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			if _, err := s.productRepo.GetByID(id); err != nil {
				return ErrProductNotFound
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		tier.UnlockedProductIDs = ids
	default:
		return ErrInvalidTier
	}

	tier.Name = req.Name
	tier.Price = req.Price
	tier.AccessMode = mode
	tier.Features = req.Features
	tier.PaymentLink = req.PaymentLink
	return nil
}
