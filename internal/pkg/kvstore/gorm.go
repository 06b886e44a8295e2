package kvstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/course_store_server/internal/model"
)

// GormStore 基于数据库表 kv_entries 的存储
type GormStore struct {
	db       *gorm.DB
	maxValue int
}

// NewGormStore maxValue 为单个文档的最大字节数，0 表示不限制
func NewGormStore(db *gorm.DB, maxValue int) *GormStore {
	return &GormStore{db: db, maxValue: maxValue}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrNotFound
	}

	var entry model.KVEntry
	err := s.db.WithContext(ctx).Where(&model.KVEntry{Key: key}).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	if s.maxValue > 0 && len(value) > s.maxValue {
		return ErrQuotaExceeded
	}

	entry := model.KVEntry{Key: key, Value: string(value)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where(&model.KVEntry{Key: key}).Delete(&model.KVEntry{}).Error
}
