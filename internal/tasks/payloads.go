package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeDocumentExport = "document:export"
	TypeDocumentPDF    = "document:pdf"
)

// DocumentPayload 携带入队时刻的完整文档快照，worker 无需访问文档存储。
type DocumentPayload struct {
	Document      json.RawMessage `json:"document"`
	CorrelationID string          `json:"correlation_id"`
	RequestedAt   time.Time       `json:"requested_at"`
}

// NewDocumentExportTask 构造导出快照任务。
func NewDocumentExportTask(document []byte, correlationID string, at time.Time) (*asynq.Task, error) {
	return newDocumentTask(TypeDocumentExport, document, correlationID, at)
}

// NewDocumentPDFTask 构造 PDF 渲染任务。
func NewDocumentPDFTask(document []byte, correlationID string, at time.Time) (*asynq.Task, error) {
	return newDocumentTask(TypeDocumentPDF, document, correlationID, at)
}

func newDocumentTask(typename string, document []byte, correlationID string, at time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(DocumentPayload{
		Document:      json.RawMessage(document),
		CorrelationID: correlationID,
		RequestedAt:   at.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, payload, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// ParseDocumentPayload 解析任务负载。
func ParseDocumentPayload(t *asynq.Task) (DocumentPayload, error) {
	var p DocumentPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return DocumentPayload{}, fmt.Errorf("unmarshal %s payload: %w", t.Type(), err)
	}
	if len(p.Document) == 0 {
		return DocumentPayload{}, fmt.Errorf("%s payload has no document", t.Type())
	}
	return p, nil
}
