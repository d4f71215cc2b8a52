package worker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/tasks"
)

// ExportTaskHandler 把文档快照以导出格式写入对象存储。
type ExportTaskHandler struct {
	deps Deps
}

// NewExportTaskHandler 创建导出任务处理器。
func NewExportTaskHandler(deps Deps) *ExportTaskHandler {
	return &ExportTaskHandler{deps: deps}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.deps.logger()
	payload, err := tasks.ParseDocumentPayload(t)
	if err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	log = log.With(slog.String("correlation_id", payload.CorrelationID), slog.String("task", t.Type()))

	doc, err := resume.Decode(payload.Document)
	if err != nil {
		log.Error("decode document snapshot failed", slog.Any("error", err))
		invalid := fmt.Errorf("%w: %v", errcode.ErrInvalidPayload, err)
		h.deps.notifier().notifyNow(ctx, JobResultMessage{Task: t.Type(), CorrelationID: payload.CorrelationID}, invalid)
		return fmt.Errorf("%w: %w", invalid, asynq.SkipRetry)
	}
	log = log.With(slog.String("document_id", doc.ID))

	n := h.deps.notifier()
	base := JobResultMessage{Task: t.Type(), DocumentID: doc.ID, CorrelationID: payload.CorrelationID}
	defer func() { n.notifyFailure(ctx, base, retErr) }()

	data, err := resume.Export(doc)
	if err != nil {
		return err
	}

	objectKey := storage.NewExportKey(doc.ID, payload.RequestedAt)
	if err := h.deps.Storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		log.Error("upload export snapshot failed", slog.Any("error", err))
		return err
	}

	url, err := h.deps.Storage.PresignDownload(ctx, objectKey, presignTTL, downloadName(doc.Title, ".json"))
	if err != nil {
		log.Error("presign export snapshot failed", slog.Any("error", err))
		return err
	}

	msg := base
	msg.Status = StatusCompleted
	msg.ObjectKey = objectKey
	msg.URL = url
	msg.ErrorCode = errcode.OK
	if err := n.publish(ctx, msg); err != nil {
		log.Error("publish export notification failed", slog.Any("error", err))
		return err
	}

	log.Info("export snapshot stored", slog.String("object_key", objectKey))
	return nil
}
