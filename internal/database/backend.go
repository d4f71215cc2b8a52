package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumeBuilder/internal/store"
)

// Backend 把文档保存为 documents 表中的一行，实现 store.Backend。
type Backend struct {
	db *gorm.DB
}

// NewBackend 返回基于 gorm 的存储后端，调用方负责先执行 Migrate。
func NewBackend(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	var row Document
	err := b.db.WithContext(ctx).Where("doc_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document %q: %w", key, err)
	}
	return []byte(row.Content), nil
}

func (b *Backend) Save(ctx context.Context, key string, data []byte) error {
	var meta struct {
		Title string `json:"title"`
	}
	_ = json.Unmarshal(data, &meta)

	row := Document{
		DocKey:  key,
		Title:   meta.Title,
		Content: datatypes.JSON(data),
	}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert document %q: %w", key, err)
	}
	return nil
}
