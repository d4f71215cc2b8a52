package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

// JobHandler 把导出与 PDF 渲染投递到 asynq。任务携带文档快照，结果通过 /v1/ws 推送。
type JobHandler struct {
	store       *store.Store
	queue       JobQueue
	limiter     redisRateCounter
	jobsPerHour int
	now         func() time.Time
}

// NewJobHandler 创建 JobHandler。queue 为 nil 时接口返回 503，limiter 为 nil 时不限流。
func NewJobHandler(s *store.Store, queue JobQueue, limiter redisRateCounter, jobsPerHour int, now func() time.Time) *JobHandler {
	if now == nil {
		now = time.Now
	}
	return &JobHandler{store: s, queue: queue, limiter: limiter, jobsPerHour: jobsPerHour, now: now}
}

// EnqueueExport 请求把导出 JSON 写入对象存储。
func (h *JobHandler) EnqueueExport(c *gin.Context) {
	h.enqueue(c, tasks.TypeDocumentExport, func() ([]byte, error) {
		return h.store.Export()
	}, tasks.NewDocumentExportTask)
}

// EnqueuePDF 请求渲染 PDF。快照保留头像，供 worker 内联。
func (h *JobHandler) EnqueuePDF(c *gin.Context) {
	h.enqueue(c, tasks.TypeDocumentPDF, func() ([]byte, error) {
		return resume.Encode(h.store.Snapshot())
	}, tasks.NewDocumentPDFTask)
}

func (h *JobHandler) enqueue(
	c *gin.Context,
	kind string,
	snapshot func() ([]byte, error),
	newTask func([]byte, string, time.Time) (*asynq.Task, error),
) {
	if h.queue == nil {
		Unavailable(c, "background jobs are disabled")
		return
	}
	ctx := c.Request.Context()
	log := middleware.LoggerFromContext(c)

	if h.limiter != nil {
		rateKey := fmt.Sprintf("rate:jobs:%s:%s", kind, c.ClientIP())
		allowed, count, err := allowInWindow(ctx, h.limiter, rateKey, h.jobsPerHour, time.Hour)
		if err != nil {
			internalError(c, "failed to check rate limit", err)
			return
		}
		if !allowed {
			log.Warn("job rate limit exceeded", slog.String("task", kind), slog.Int64("count", count))
			TooManyRequests(c)
			return
		}
	}

	document, err := snapshot()
	if err != nil {
		internalError(c, "failed to snapshot document", err)
		return
	}
	task, err := newTask(document, middleware.GetCorrelationID(c), h.now().UTC())
	if err != nil {
		internalError(c, "failed to create task", err)
		return
	}

	info, err := h.queue.EnqueueContext(ctx, task)
	if err != nil {
		internalError(c, "failed to enqueue task", err)
		return
	}

	log.Info("task enqueued", slog.String("task", kind), slog.String("task_id", info.ID))
	c.JSON(http.StatusAccepted, gin.H{
		"message": "request accepted",
		"task_id": info.ID,
		"task":    kind,
	})
}
