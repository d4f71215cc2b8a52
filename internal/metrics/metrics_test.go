package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if c := out.GetCounter(); c != nil {
		return c.GetValue()
	}
	return out.GetGauge().GetValue()
}

func TestObserveStoreMutation(t *testing.T) {
	before := value(t, storeMutationsTotal.WithLabelValues("reset", "error"))

	ObserveStoreMutation("reset", time.Millisecond, errors.New("boom"))

	assert.Equal(t, before+1, value(t, storeMutationsTotal.WithLabelValues("reset", "error")))
}

func TestGinMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/v1/sections/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	labels := []string{http.MethodGet, "/v1/sections/:id", "204"}
	before := value(t, requestTotal.WithLabelValues(labels...))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sections/abc", nil))

	assert.Equal(t, before+1, value(t, requestTotal.WithLabelValues(labels...)))
}

func TestAsynqMetricsMiddleware_CountsFailures(t *testing.T) {
	h := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return errors.New("fail")
	}))
	before := value(t, taskFailedTotal.WithLabelValues("document:pdf"))

	_ = h.ProcessTask(context.Background(), asynq.NewTask("document:pdf", nil))

	assert.Equal(t, before+1, value(t, taskFailedTotal.WithLabelValues("document:pdf")))
}

func TestAsynqMetricsMiddleware_CountsSkipRetry(t *testing.T) {
	h := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return fmt.Errorf("bad payload: %w", asynq.SkipRetry)
	}))
	before := value(t, taskSkippedTotal.WithLabelValues("document:export"))

	_ = h.ProcessTask(context.Background(), asynq.NewTask("document:export", nil))

	assert.Equal(t, before+1, value(t, taskSkippedTotal.WithLabelValues("document:export")))
}
