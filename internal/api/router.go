package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/metrics"
)

// NewRouter 构建 Gin 路由引擎：健康检查、Prometheus 指标与 /v1 业务接口。
func NewRouter(deps Dependencies) *gin.Engine {
	deps = deps.withDefaults()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(deps.Logger),
		metrics.GinMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(router, deps)
	return router
}
