package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/sections"
	"resumeBuilder/internal/store"
)

// maxImportBytes 限制导入文件大小。
const maxImportBytes = 2 << 20

// DocumentHandler 负责整份文档与分页设置相关的接口。
type DocumentHandler struct {
	store *store.Store
}

// NewDocumentHandler 创建 DocumentHandler。
func NewDocumentHandler(s *store.Store) *DocumentHandler {
	return &DocumentHandler{store: s}
}

type metaRequest struct {
	Title    *string        `json:"title"`
	Template *string        `json:"template"`
	Layout   *resume.Layout `json:"layout"`
}

type enableMultiPageRequest struct {
	TotalPages int `json:"totalPages" binding:"omitempty,min=1"`
}

type setPagesRequest struct {
	Pages []sections.PageUpdate `json:"pages" binding:"required,dive"`
}

// Get 返回当前文档。
func (h *DocumentHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// UpdateMeta 修改标题、模板或布局。
func (h *DocumentHandler) UpdateMeta(c *gin.Context) {
	var req metaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	err := h.store.UpdateMeta(c.Request.Context(), store.Meta{Title: req.Title, Template: req.Template, Layout: req.Layout})
	if errors.Is(err, store.ErrInvalidLayout) {
		BadRequest(c, "invalid layout")
		return
	}
	if err != nil {
		internalError(c, "failed to update document", err)
		return
	}
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// Reset 恢复为种子文档。
func (h *DocumentHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		internalError(c, "failed to reset document", err)
		return
	}
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// UpdatePageSettings 整体替换分页设置。
func (h *DocumentHandler) UpdatePageSettings(c *gin.Context) {
	var req resume.PageSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.pageSettingsResult(c, h.store.UpdatePageSettings(c.Request.Context(), req))
}

// EnableMultiPage 打开多页模式，body 可选。
func (h *DocumentHandler) EnableMultiPage(c *gin.Context) {
	var req enableMultiPageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	h.pageSettingsResult(c, h.store.EnableMultiPage(c.Request.Context(), req.TotalPages))
}

// DisableMultiPage 关闭多页模式并把所有模块放回第一页。
func (h *DocumentHandler) DisableMultiPage(c *gin.Context) {
	h.pageSettingsResult(c, h.store.DisableMultiPage(c.Request.Context()))
}

// AutoAssignPages 按顺序轮流分配页码。
func (h *DocumentHandler) AutoAssignPages(c *gin.Context) {
	h.pageSettingsResult(c, h.store.AutoAssignPages(c.Request.Context()))
}

// ResetPageAssignments 清除所有页码分配。
func (h *DocumentHandler) ResetPageAssignments(c *gin.Context) {
	h.pageSettingsResult(c, h.store.ResetPageAssignments(c.Request.Context()))
}

// SetPages 批量设置模块页码。
func (h *DocumentHandler) SetPages(c *gin.Context) {
	var req setPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.pageSettingsResult(c, h.store.SetPages(c.Request.Context(), req.Pages))
}

func (h *DocumentHandler) pageSettingsResult(c *gin.Context, err error) {
	if errors.Is(err, store.ErrInvalidPageSettings) {
		BadRequest(c, "totalPages must be at least 1")
		return
	}
	if err != nil {
		internalError(c, "failed to update pages", err)
		return
	}
	doc := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"pageSettings": doc.PageSettings,
		"counts":       h.store.PageCounts(),
	})
}

// PageCounts 返回每页的模块数量。
func (h *DocumentHandler) PageCounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pageSettings": h.store.Snapshot().PageSettings,
		"counts":       h.store.PageCounts(),
	})
}

// SectionsByPage 返回某一页上可见的模块。
func (h *DocumentHandler) SectionsByPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		BadRequest(c, "invalid page number")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":     page,
		"sections": emptyIfNil(h.store.SectionsByPage(page)),
	})
}

// Export 以附件形式下载文档 JSON（不含头像）。
func (h *DocumentHandler) Export(c *gin.Context) {
	data, err := h.store.Export()
	if err != nil {
		internalError(c, "failed to export document", err)
		return
	}
	filename := fmt.Sprintf("resume-%s.json", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import 用上传的 JSON 替换整份文档。
func (h *DocumentHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	data, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "failed to read body")
		return
	}

	err = h.store.Import(c.Request.Context(), data)
	var verr *resume.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.store.Snapshot())
	case errors.As(err, &verr):
		Invalid(c, "invalid document", verr.Errors)
	case errors.Is(err, resume.ErrMalformedDocument), errors.Is(err, resume.ErrInvalidDocument):
		BadRequest(c, err.Error())
	default:
		internalError(c, "failed to import document", err)
	}
}

// internalError 记录错误并返回 500。
func internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	middleware.LoggerFromContext(c).Error(msg, slog.Any("error", err))
	Internal(c, msg)
}

func emptyIfNil(secs []resume.Section) []resume.Section {
	if secs == nil {
		return []resume.Section{}
	}
	return secs
}
