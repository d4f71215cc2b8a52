package api

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/events"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

const defaultJobsPerHour = 30

// AssetStorage 是头像与导出快照所需的对象存储能力，由 *storage.Client 实现。
type AssetStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	DeleteObject(ctx context.Context, objectKey string) error
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
	PresignDownload(ctx context.Context, objectKey string, duration time.Duration, filename string) (string, error)
}

// Scanner 在文件落盘前检查病毒。
type Scanner interface {
	Scan(r io.Reader) error
}

// JobQueue 投递后台任务；*asynq.Client 满足该接口。
type JobQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dependencies 汇总路由所需的组件。Assets、Scanner、Jobs、RateLimiter、Events
// 为 nil 时对应功能关闭。
type Dependencies struct {
	Store          *store.Store
	Sessions       *editor.Registry
	Renderer       *render.Renderer
	Events         events.Subscriber
	Assets         AssetStorage
	Scanner        Scanner
	Jobs           JobQueue
	RateLimiter    redisRateCounter
	JobsPerHour    int
	Logger         *slog.Logger
	AllowedOrigins []string
	Now            func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.JobsPerHour <= 0 {
		d.JobsPerHour = defaultJobsPerHour
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// RegisterRoutes 注册 /v1 路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	deps = deps.withDefaults()

	documentHandler := NewDocumentHandler(deps.Store)
	sectionHandler := NewSectionHandler(deps.Store)
	sessionHandler := NewSessionHandler(deps.Sessions)
	assetHandler := NewAssetHandler(deps.Store, deps.Assets, deps.Scanner)
	previewHandler := NewPreviewHandler(deps.Store, deps.Renderer)
	jobHandler := NewJobHandler(deps.Store, deps.Jobs, deps.RateLimiter, deps.JobsPerHour, deps.Now)
	wsHandler := NewWsHandler(deps.Events, deps.Logger, deps.AllowedOrigins)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)
		v1.GET("/preview", previewHandler.Preview)

		documentGroup := v1.Group("/document")
		{
			documentGroup.GET("", documentHandler.Get)
			documentGroup.PUT("/meta", documentHandler.UpdateMeta)
			documentGroup.POST("/reset", documentHandler.Reset)
			documentGroup.PUT("/page-settings", documentHandler.UpdatePageSettings)
			documentGroup.GET("/pages", documentHandler.PageCounts)
			documentGroup.PUT("/pages", documentHandler.SetPages)
			documentGroup.GET("/pages/:page", documentHandler.SectionsByPage)
			documentGroup.POST("/pages/enable", documentHandler.EnableMultiPage)
			documentGroup.POST("/pages/disable", documentHandler.DisableMultiPage)
			documentGroup.POST("/pages/auto-assign", documentHandler.AutoAssignPages)
			documentGroup.POST("/pages/reset", documentHandler.ResetPageAssignments)
			documentGroup.GET("/export", documentHandler.Export)
			documentGroup.POST("/import", documentHandler.Import)
			documentGroup.GET("/exports", assetHandler.ListExports)
			documentGroup.POST("/export/jobs", jobHandler.EnqueueExport)
			documentGroup.POST("/pdf/jobs", jobHandler.EnqueuePDF)
		}

		sectionGroup := v1.Group("/sections")
		{
			sectionGroup.GET("", sectionHandler.List)
			sectionGroup.POST("", sectionHandler.CreateCustom)
			sectionGroup.GET("/basic", sectionHandler.Basic)
			sectionGroup.PUT("/order", sectionHandler.Reorder)
			sectionGroup.GET("/:id", sectionHandler.Get)
			sectionGroup.PATCH("/:id", sectionHandler.UpdateProps)
			sectionGroup.PUT("/:id/data", sectionHandler.UpdateData)
			sectionGroup.PUT("/:id/editor-type", sectionHandler.ChangeEditorType)
			sectionGroup.POST("/:id/visibility", sectionHandler.ToggleVisibility)
			sectionGroup.DELETE("/:id", sectionHandler.Delete)
		}

		sessionGroup := v1.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.Open)
			sessionGroup.GET("/:id", sessionHandler.Get)
			sessionGroup.PUT("/:id", sessionHandler.Update)
			sessionGroup.DELETE("/:id", sessionHandler.Close)
		}

		assetGroup := v1.Group("/assets")
		{
			assetGroup.POST("/avatar", assetHandler.UploadAvatar)
		}
	}
}
