package service

import (
	"context"
	"errors"
	"time"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/repository"
)

var ErrInvalidTimezone = errors.New("时区无效")

type SettingsService struct {
	settings *repository.SettingsRepository
}

func NewSettingsService(settings *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get() config.StoreSettings {
	return s.settings.Get()
}

// Update 保存店铺设置，空字段回落到默认值
func (s *SettingsService) Update(ctx context.Context, req *dto.SettingsRequest) (config.StoreSettings, error) {
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return config.StoreSettings{}, ErrInvalidTimezone
		}
	}

	return s.settings.Save(ctx, config.StoreSettings{
		Name:           req.Name,
		CurrencySymbol: req.CurrencySymbol,
		Timezone:       req.Timezone,
		SupportEmail:   req.SupportEmail,
	})
}
