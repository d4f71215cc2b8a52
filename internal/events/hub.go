package events

import (
	"context"
	"sync"
)

const defaultHubBuffer = 16

// Hub 是进程内的广播总线。订阅者处理过慢时消息会被丢弃，不阻塞发布方。
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
	buffer int
}

// NewHub 创建进程内总线。
func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{}), buffer: defaultHubBuffer}
}

// Publish 向当前所有订阅者投递 payload 的副本。
func (h *Hub) Publish(_ context.Context, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		msg := append([]byte(nil), payload...)
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe 注册一个订阅者，ctx 结束后自动注销并关闭通道。
func (h *Hub) Subscribe(ctx context.Context) (<-chan []byte, error) {
	ch := make(chan []byte, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Subscribers 返回当前订阅者数量。
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
