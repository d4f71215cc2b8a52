// Package events 负责把文档变更和后台任务结果推送给订阅方（WebSocket 等）。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// 事件类型常量，生产者与前端解析保持一致。
const (
	TypeDocumentChanged = "document.changed"
	TypeJobResult       = "job.result"
)

// DefaultChannel 是未配置时使用的 Redis 频道名。
const DefaultChannel = "resume_notify"

// Event 描述一次文档变更。
type Event struct {
	Type       string    `json:"type"`
	Op         string    `json:"op"`
	DocumentID string    `json:"document_id"`
	SectionID  string    `json:"section_id,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher 发布一条已编码的消息。
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Subscriber 返回一个消息通道，ctx 结束后通道关闭。
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// Bus 同时具备发布与订阅能力。
type Bus interface {
	Publisher
	Subscriber
}

// PublishJSON 编码 v 并发布。
func PublishJSON(ctx context.Context, p Publisher, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	if err := p.Publish(ctx, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Discard 丢弃所有消息。
type Discard struct{}

func (Discard) Publish(context.Context, []byte) error { return nil }
