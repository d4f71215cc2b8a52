package worker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/pdf"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/tasks"
)

// PDFTaskHandler 负责消费 PDF 生成任务：渲染预览 HTML，交给无头浏览器打印。
type PDFTaskHandler struct {
	deps      Deps
	renderer  *render.Renderer
	generator pdf.Generator
}

// NewPDFTaskHandler 创建任务处理器。
func NewPDFTaskHandler(deps Deps, renderer *render.Renderer, generator pdf.Generator) *PDFTaskHandler {
	return &PDFTaskHandler{deps: deps, renderer: renderer, generator: generator}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
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
	log.Info("starting pdf generation task")

	n := h.deps.notifier()
	base := JobResultMessage{Task: t.Type(), DocumentID: doc.ID, CorrelationID: payload.CorrelationID}
	defer func() { n.notifyFailure(ctx, base, retErr) }()

	res, err := h.renderer.Render(ctx, doc)
	if err != nil {
		log.Error("render preview failed", slog.Any("error", err))
		return err
	}

	pdfBytes, err := h.generator.GeneratePDF(ctx, string(res.HTML))
	if err != nil {
		log.Error("generate pdf failed", slog.Any("error", err))
		return err
	}

	objectKey := storage.NewPDFKey(doc.ID)
	if err := h.deps.Storage.UploadFile(ctx, objectKey, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	url, err := h.deps.Storage.PresignDownload(ctx, objectKey, presignTTL, downloadName(doc.Title, ".pdf"))
	if err != nil {
		log.Error("presign pdf failed", slog.Any("error", err))
		return err
	}

	msg := base
	msg.Status = StatusCompleted
	msg.ObjectKey = objectKey
	msg.URL = url
	msg.ErrorCode = errcode.OK
	if len(res.MissingKeys) > 0 {
		msg.ErrorCode = errcode.ResourceMissing
		msg.ErrorMessage = "部分图片资源缺失/无效，已自动跳过并继续生成"
		msg.MissingKeys = res.MissingKeys
		log.Warn("pdf generated with missing assets", slog.Any("missing_keys", res.MissingKeys))
	}
	if err := n.publish(ctx, msg); err != nil {
		log.Error("publish pdf notification failed", slog.Any("error", err))
		return err
	}

	log.Info("pdf generation task completed", slog.String("object_key", objectKey))
	return nil
}
