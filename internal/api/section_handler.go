package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/sections"
	"resumeBuilder/internal/store"
)

// SectionHandler 负责模块的增删改查。store 对未知 id 静默忽略，这里统一转为 404。
type SectionHandler struct {
	store *store.Store
}

// NewSectionHandler 创建 SectionHandler。
func NewSectionHandler(s *store.Store) *SectionHandler {
	return &SectionHandler{store: s}
}

type sectionDataRequest struct {
	Data     json.RawMessage `json:"data"`
	IconName *string         `json:"iconName"`
}

type editorTypeRequest struct {
	EditorType resume.EditorType `json:"editorType" binding:"required,oneof=timeline list text"`
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// List 返回按顺序排列的非 basic 模块。
func (h *SectionHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, emptyIfNil(h.store.NonBasicSections()))
}

// Basic 返回基本信息模块。
func (h *SectionHandler) Basic(c *gin.Context) {
	sec, ok := h.store.BasicSection()
	if !ok {
		NotFound(c, "basic section not found")
		return
	}
	c.JSON(http.StatusOK, sec)
}

// Get 返回单个模块。
func (h *SectionHandler) Get(c *gin.Context) {
	sec, ok := h.store.Section(c.Param("id"))
	if !ok {
		NotFound(c, "section not found")
		return
	}
	c.JSON(http.StatusOK, sec)
}

// CreateCustom 在末尾追加一个自定义模块。
func (h *SectionHandler) CreateCustom(c *gin.Context) {
	sec, err := h.store.AddCustomSection(c.Request.Context())
	if err != nil {
		internalError(c, "failed to add section", err)
		return
	}
	c.JSON(http.StatusCreated, sec)
}

// Reorder 按给定的 id 顺序重排非 basic 模块。
func (h *SectionHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	err := h.store.ReorderIDs(c.Request.Context(), req.IDs)
	if errors.Is(err, store.ErrInvalidOrder) {
		BadRequest(c, err.Error())
		return
	}
	if err != nil {
		internalError(c, "failed to reorder sections", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(h.store.NonBasicSections()))
}

// UpdateProps 合并标题、图标、可见性、编辑器类型、页码与顺序。
func (h *SectionHandler) UpdateProps(c *gin.Context) {
	var props sections.Props
	if err := c.ShouldBindJSON(&props); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if props.EditorType != nil && !props.EditorType.Valid() {
		BadRequest(c, "invalid editor type")
		return
	}
	if props.PageNumber != nil && *props.PageNumber < 0 {
		BadRequest(c, "invalid page number")
		return
	}

	id := c.Param("id")
	found, err := h.store.UpdateSectionProps(c.Request.Context(), id, props)
	h.sectionResult(c, id, found, err)
}

// UpdateData 替换模块数据，data 必须符合模块当前的结构。
func (h *SectionHandler) UpdateData(c *gin.Context) {
	var req sectionDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	id := c.Param("id")
	sec, ok := h.store.Section(id)
	if !ok {
		NotFound(c, "section not found")
		return
	}
	data, err := resume.DecodeContent(sec.ContentKind(), req.Data)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	found, err := h.store.UpdateSectionData(c.Request.Context(), id, data, req.IconName)
	h.sectionResult(c, id, found, err)
}

// ChangeEditorType 切换编辑器类型并转换已有数据。
func (h *SectionHandler) ChangeEditorType(c *gin.Context) {
	var req editorTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	id := c.Param("id")
	found, err := h.store.ChangeEditorType(c.Request.Context(), id, req.EditorType)
	h.sectionResult(c, id, found, err)
}

// ToggleVisibility 切换模块的显示状态。
func (h *SectionHandler) ToggleVisibility(c *gin.Context) {
	id := c.Param("id")
	found, err := h.store.ToggleVisibility(c.Request.Context(), id)
	h.sectionResult(c, id, found, err)
}

// Delete 删除模块，basic 模块不可删除。
func (h *SectionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	sec, ok := h.store.Section(id)
	if !ok {
		NotFound(c, "section not found")
		return
	}
	if sec.IsBasic() {
		Conflict(c, "basic section cannot be deleted")
		return
	}

	found, err := h.store.DeleteSection(c.Request.Context(), id)
	if err != nil {
		internalError(c, "failed to delete section", err)
		return
	}
	if !found {
		NotFound(c, "section not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SectionHandler) sectionResult(c *gin.Context, id string, found bool, err error) {
	if errors.Is(err, resume.ErrShapeMismatch) {
		BadRequest(c, err.Error())
		return
	}
	if err != nil {
		internalError(c, "failed to update section", err)
		return
	}
	if !found {
		NotFound(c, "section not found")
		return
	}
	sec, ok := h.store.Section(id)
	if !ok {
		NotFound(c, "section not found")
		return
	}
	c.JSON(http.StatusOK, sec)
}
