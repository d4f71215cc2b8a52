package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "文档变更次数，按操作与结果区分。",
		},
		[]string{"op", "result"},
	)

	storePersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutation_duration_seconds",
			Help:      "一次读-改-写（含持久化）的耗时分布（秒）。",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"op"},
	)
)

// ObserveStoreMutation 与 store.Observer 签名一致，用于记录文档变更指标。
func ObserveStoreMutation(op string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeMutationsTotal.WithLabelValues(op, result).Inc()
	storePersistDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
