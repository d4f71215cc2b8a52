package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/render"
	"resumeBuilder/internal/store"
)

// HeaderMissingAssets 列出预览中未能加载的对象键。
const HeaderMissingAssets = "X-Missing-Assets"

// PreviewHandler 渲染当前文档的 HTML 预览。
type PreviewHandler struct {
	store    *store.Store
	renderer *render.Renderer
}

// NewPreviewHandler 创建 PreviewHandler。
func NewPreviewHandler(s *store.Store, renderer *render.Renderer) *PreviewHandler {
	return &PreviewHandler{store: s, renderer: renderer}
}

// Preview 返回 text/html。
func (h *PreviewHandler) Preview(c *gin.Context) {
	if h.renderer == nil {
		Unavailable(c, "preview is not configured")
		return
	}

	result, err := h.renderer.Render(c.Request.Context(), h.store.Snapshot())
	if err != nil {
		internalError(c, "failed to render preview", err)
		return
	}
	if len(result.MissingKeys) > 0 {
		c.Header(HeaderMissingAssets, strings.Join(result.MissingKeys, ","))
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", result.HTML)
}
