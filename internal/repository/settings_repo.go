package repository

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/pkg/kvstore"
)

// SettingsRepository 店铺设置，存储中没有时使用配置文件中的值
type SettingsRepository struct {
	mu       sync.RWMutex
	store    kvstore.Store
	log      *logrus.Entry
	settings config.StoreSettings
}

func NewSettingsRepository(store kvstore.Store, defaults config.StoreSettings, log *logrus.Logger) *SettingsRepository {
	defaults.ApplyDefaults()
	return &SettingsRepository{
		store:    store,
		log:      log.WithField("collection", KeySettings),
		settings: defaults,
	}
}

func (r *SettingsRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := loadDocument(ctx, r.store, KeySettings, r.log, r.settings)
	if err != nil {
		return err
	}
	s.ApplyDefaults()
	r.settings = s
	return nil
}

func (r *SettingsRepository) Get() config.StoreSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

func (r *SettingsRepository) Save(ctx context.Context, s config.StoreSettings) (config.StoreSettings, error) {
	s.ApplyDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	return s, saveDocument(ctx, r.store, KeySettings, r.log, s)
}
