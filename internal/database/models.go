package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document 表示按固定键保存的一份简历文档。
// Content 在 PostgreSQL 中为 jsonb，在 SQLite 中退化为文本。
type Document struct {
	gorm.Model
	DocKey  string         `gorm:"uniqueIndex;size:128"`
	Title   string         `gorm:"size:255"`
	Content datatypes.JSON `gorm:"type:jsonb"`
}
