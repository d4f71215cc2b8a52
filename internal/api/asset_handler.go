package api

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

// maxAvatarBytes 限制头像大小。
const maxAvatarBytes = 5 << 20

// AssetHandler 负责对象存储相关接口：头像上传（扫描、写入、回写基本信息）与导出快照列表。
type AssetHandler struct {
	store   *store.Store
	storage AssetStorage
	scanner Scanner
}

// NewAssetHandler 返回 AssetHandler 实例。scanner 为 nil 时跳过病毒扫描。
func NewAssetHandler(s *store.Store, storageClient AssetStorage, scanner Scanner) *AssetHandler {
	return &AssetHandler{store: s, storage: storageClient, scanner: scanner}
}

// UploadAvatar 处理头像上传，并在上传前扫描病毒。
func (h *AssetHandler) UploadAvatar(c *gin.Context) {
	if h.storage == nil {
		Unavailable(c, "object storage is not configured")
		return
	}
	log := middleware.LoggerFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size <= 0 || file.Size > maxAvatarBytes {
		BadRequest(c, "avatar must be between 1 byte and 5MB")
		return
	}
	contentType := file.Header.Get("Content-Type")
	ext, ok := storage.AvatarExtension(contentType)
	if !ok {
		BadRequest(c, "unsupported image type")
		return
	}

	basic, ok := h.store.BasicSection()
	if !ok {
		NotFound(c, "basic section not found")
		return
	}

	if h.scanner != nil {
		fileReader, err := file.Open()
		if err != nil {
			Internal(c, "failed to open file")
			return
		}
		err = h.scanner.Scan(fileReader)
		fileReader.Close()
		if errors.Is(err, ErrMaliciousFile) {
			log.Warn("rejected avatar upload", slog.Any("error", err))
			BadRequest(c, "malicious file detected")
			return
		}
		if err != nil {
			internalError(c, "failed to scan file", err)
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	objectKey := storage.NewAvatarKey(ext)
	if err := h.storage.UploadFile(c.Request.Context(), objectKey, fileReader, file.Size, contentType); err != nil {
		internalError(c, "failed to upload file", err)
		return
	}

	info, _ := basic.Data.(resume.BasicInfo)
	previous := info.Avatar
	info.Avatar = objectKey
	if _, err := h.store.UpdateSectionData(c.Request.Context(), basic.ID, info, nil); err != nil {
		internalError(c, "failed to save avatar", err)
		return
	}
	if storage.IsAvatarKey(previous) && previous != objectKey {
		if err := h.storage.DeleteObject(c.Request.Context(), previous); err != nil {
			log.Warn("delete previous avatar failed", slog.String("object_key", previous), slog.Any("error", err))
		}
	}

	log.Info("avatar uploaded", slog.String("object_key", objectKey), slog.Int64("size", file.Size))
	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}

// ListExports 列出导出任务写入对象存储的快照，按时间倒序，附带 10 分钟有效的下载链接。
func (h *AssetHandler) ListExports(c *gin.Context) {
	if h.storage == nil {
		Unavailable(c, "object storage is not configured")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	ctx := c.Request.Context()
	objects, err := h.storage.ListObjects(ctx, storage.ExportDir(h.store.Snapshot().ID), limit)
	if err != nil {
		internalError(c, "failed to list exports", err)
		return
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	items := make([]gin.H, 0, len(objects))
	for _, obj := range objects {
		url, err := h.storage.PresignDownload(ctx, obj.Key, 10*time.Minute, path.Base(obj.Key))
		if err != nil {
			middleware.LoggerFromContext(c).Error("presign export failed", slog.String("object_key", obj.Key), slog.Any("error", err))
			continue
		}
		items = append(items, gin.H{
			"objectKey":    obj.Key,
			"url":          url,
			"size":         obj.Size,
			"lastModified": obj.LastModified,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
