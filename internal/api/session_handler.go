package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/resume"
)

// SessionHandler 暴露模块编辑会话：打开、写入缓冲（防抖自动保存）与关闭（立即落盘）。
type SessionHandler struct {
	sessions *editor.Registry
}

// NewSessionHandler 创建 SessionHandler。
func NewSessionHandler(sessions *editor.Registry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type openSessionRequest struct {
	SectionID string `json:"sectionId" binding:"required"`
}

type sessionResponse struct {
	Session editor.Info   `json:"session"`
	Buffer  editor.Buffer `json:"buffer"`
}

// Open 在指定模块上打开编辑会话。
func (h *SessionHandler) Open(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	info, buf, err := h.sessions.Open(req.SectionID)
	if errors.Is(err, editor.ErrSectionNotFound) {
		NotFound(c, "section not found")
		return
	}
	if err != nil {
		internalError(c, "failed to open session", err)
		return
	}
	metrics.SetEditorSessions(h.sessions.Len())
	c.JSON(http.StatusCreated, sessionResponse{Session: info, Buffer: buf})
}

// Get 返回会话状态。
func (h *SessionHandler) Get(c *gin.Context) {
	info, ok := h.sessions.Info(c.Param("id"))
	if !ok {
		NotFound(c, "session not found")
		return
	}
	c.JSON(http.StatusOK, info)
}

// Update 替换会话缓冲，保存在防抖延迟后进行。
func (h *SessionHandler) Update(c *gin.Context) {
	id := c.Param("id")
	kind, ok := h.sessions.Kind(id)
	if !ok {
		NotFound(c, "session not found")
		return
	}

	var req sectionDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	data, err := resume.DecodeContent(kind, req.Data)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	err = h.sessions.Update(id, editor.Buffer{Data: data, IconName: req.IconName})
	switch {
	case errors.Is(err, editor.ErrSessionNotFound):
		NotFound(c, "session not found")
		return
	case errors.Is(err, resume.ErrShapeMismatch):
		BadRequest(c, err.Error())
		return
	case err != nil:
		internalError(c, "failed to update session", err)
		return
	}

	info, _ := h.sessions.Info(id)
	c.JSON(http.StatusAccepted, info)
}

// Close 立即保存未提交的缓冲并关闭会话。保存失败时会话仍被移除。
func (h *SessionHandler) Close(c *gin.Context) {
	err := h.sessions.Close(c.Request.Context(), c.Param("id"))
	metrics.SetEditorSessions(h.sessions.Len())
	if errors.Is(err, editor.ErrSessionNotFound) {
		NotFound(c, "session not found")
		return
	}
	if err != nil {
		internalError(c, "failed to save session", err)
		return
	}
	middleware.LoggerFromContext(c).Debug("editor session closed via api")
	c.Status(http.StatusNoContent)
}
