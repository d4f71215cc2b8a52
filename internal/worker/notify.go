package worker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/events"
)

// 任务状态。
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// JobResultMessage 是通过事件总线推送给前端的任务结果。
// 注意：这里的字段名与前端解析保持一致。
type JobResultMessage struct {
	Type          string    `json:"type"`
	Task          string    `json:"task"`
	Status        string    `json:"status"`
	DocumentID    string    `json:"document_id"`
	CorrelationID string    `json:"correlation_id"`
	ObjectKey     string    `json:"object_key,omitempty"`
	URL           string    `json:"url,omitempty"`
	ErrorCode     int       `json:"error_code"`
	ErrorMessage  string    `json:"error_message"`
	MissingKeys   []string  `json:"missing_keys,omitempty"`
	At            time.Time `json:"at"`
}

type notifier struct {
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func (n notifier) publish(ctx context.Context, msg JobResultMessage) error {
	msg.Type = events.TypeJobResult
	msg.At = n.now().UTC()
	return events.PublishJSON(ctx, n.publisher, msg)
}

// notifyFailure 仅在最后一次重试失败时推送错误，避免前端收到中间态。
func (n notifier) notifyFailure(ctx context.Context, base JobResultMessage, err error) {
	if err == nil || !isFinalAsynqAttempt(ctx) {
		return
	}
	n.notifyNow(ctx, base, err)
}

// notifyNow 立即推送错误，用于不会重试的失败。
func (n notifier) notifyNow(ctx context.Context, base JobResultMessage, err error) {
	base.Status = StatusError
	base.ErrorCode = errcode.For(err)
	base.ErrorMessage = strings.TrimSpace(err.Error())
	if pubErr := n.publish(ctx, base); pubErr != nil {
		n.logger.Error("publish job error notification failed", slog.Any("error", pubErr))
	}
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
