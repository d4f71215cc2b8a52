// Package editor 实现编辑框的自动保存：缓冲区在停止输入一段时间后提交，关闭编辑器时立即落盘。
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay 是自动保存的防抖间隔。
const DefaultDelay = 500 * time.Millisecond

// ErrSessionClosed 表示会话已关闭。
var ErrSessionClosed = errors.New("editor session closed")

// CommitFunc 把缓冲区写回文档。
type CommitFunc[T any] func(ctx context.Context, value T) error

// Cloner 由需要深拷贝的缓冲值实现。
type Cloner[T any] interface {
	Clone() T
}

func cloneValue[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}

// sameJSON 按 JSON 编码比较两个值，编码失败视为不相等。
func sameJSON(a, b any) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ja) == string(jb)
}

type options struct {
	delay  time.Duration
	after  AfterFunc
	logger *slog.Logger
	ctx    context.Context
}

// Option 配置 Session。
type Option func(*options)

// WithDelay 覆盖 DefaultDelay。
func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithAfterFunc 替换时钟，用于测试。
func WithAfterFunc(f AfterFunc) Option {
	return func(o *options) { o.after = f }
}

// WithLogger 设置后台提交失败时使用的日志。
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithContext 设置防抖提交使用的 context。
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// Session 缓冲单个值的编辑。同一时刻只有一个提交在执行，定时提交与 Close 时的落盘不会交错。
type Session[T any] struct {
	mu        sync.Mutex
	buffer    T
	committed T
	closed    bool

	commitMu sync.Mutex
	commit   CommitFunc[T]
	deb      *Debouncer
	logger   *slog.Logger
	ctx      context.Context
}

// Open 以 initial 作为缓冲区和已提交值开启会话。
func Open[T any](initial T, commit CommitFunc[T], opts ...Option) *Session[T] {
	o := options{delay: DefaultDelay, logger: slog.Default(), ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Session[T]{
		buffer:    cloneValue(initial),
		committed: cloneValue(initial),
		commit:    commit,
		deb:       NewDebouncer(o.delay, o.after),
		logger:    o.logger,
		ctx:       o.ctx,
	}
}

// Set 替换缓冲区并重新计时；改回已提交的值会取消待执行的提交。
func (s *Session[T]) Set(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.buffer = cloneValue(v)
	if sameJSON(s.buffer, s.committed) {
		s.deb.Cancel()
		return nil
	}
	s.deb.Schedule(s.commitInBackground)
	return nil
}

// Value 返回缓冲区的副本。
func (s *Session[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValue(s.buffer)
}

// Committed 返回最近一次提交值的副本。
func (s *Session[T]) Committed() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValue(s.committed)
}

// Dirty 报告缓冲区是否与已提交值不同。
func (s *Session[T]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !sameJSON(s.buffer, s.committed)
}

func (s *Session[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session[T]) commitInBackground() {
	if err := s.commitBuffer(s.ctx); err != nil {
		s.logger.Warn("auto-save commit failed", slog.Any("error", err))
	}
}

// commitBuffer 仅在缓冲区有变化时提交。
func (s *Session[T]) commitBuffer(ctx context.Context) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	value := cloneValue(s.buffer)
	dirty := !sameJSON(value, s.committed)
	s.mu.Unlock()
	if !dirty {
		return nil
	}

	if err := s.commit(ctx, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = value
	s.mu.Unlock()
	return nil
}

// Flush 立即提交待保存的编辑。
func (s *Session[T]) Flush(ctx context.Context) error {
	s.deb.Cancel()
	return s.commitBuffer(ctx)
}

// Close 落盘未提交的编辑并结束会话。落盘失败时直接重试一次提交，
// 无论结果如何会话都会关闭，并返回最后的错误。
func (s *Session[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.deb.Cancel()
	err := s.commitBuffer(ctx)
	if err == nil {
		return nil
	}
	s.logger.Warn("flush on close failed, retrying direct commit", slog.Any("error", err))
	if err := s.commitBuffer(ctx); err != nil {
		s.logger.Error("direct commit on close failed", slog.Any("error", err))
		return fmt.Errorf("close editor session: %w", err)
	}
	return nil
}
