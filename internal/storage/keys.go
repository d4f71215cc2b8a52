package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// 对象键前缀。
const (
	AvatarPrefix = "avatars/"
	ExportPrefix = "exports/"
	PDFPrefix    = "pdfs/"
)

const maxKeyLength = 200

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// AvatarExtension 返回图片 Content-Type 对应的扩展名。
func AvatarExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// NewAvatarKey 生成新的头像对象键。
func NewAvatarKey(ext string) string {
	return AvatarPrefix + uuid.NewString() + ext
}

// NewExportKey 生成导出快照的对象键，按文档 id 分目录。
func NewExportKey(documentID string, at time.Time) string {
	return ExportDir(documentID) + at.UTC().Format("20060102T150405Z") + ".json"
}

// ExportDir 返回某文档全部导出快照的公共前缀。
func ExportDir(documentID string) string {
	return ExportPrefix + safeSegment(documentID) + "/"
}

// NewPDFKey 生成 PDF 的对象键。
func NewPDFKey(documentID string) string {
	return fmt.Sprintf("%s%s/%s.pdf", PDFPrefix, safeSegment(documentID), uuid.NewString())
}

func safeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
	if s == "" {
		return "document"
	}
	return s
}

// IsAvatarKey 判断值是否为本服务生成的头像对象键（而非 data URI 或外链）。
func IsAvatarKey(key string) bool {
	if key == "" || !utf8.ValidString(key) || len(key) > maxKeyLength {
		return false
	}
	if !strings.HasPrefix(key, AvatarPrefix) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	switch strings.ToLower(path.Ext(key)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	default:
		return false
	}
}
