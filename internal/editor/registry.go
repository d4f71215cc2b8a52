package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumeBuilder/internal/resume"
)

var (
	// ErrSessionNotFound 表示会话不存在或已关闭。
	ErrSessionNotFound = errors.New("editor session not found")
	// ErrSectionNotFound 表示被编辑的模块已不存在。
	ErrSectionNotFound = errors.New("section not found")
)

// Buffer 是模块编辑器编辑的内容：data 以及可选的图标名。
type Buffer struct {
	Data     resume.Content `json:"data"`
	IconName *string        `json:"iconName,omitempty"`
}

func (b Buffer) Clone() Buffer {
	out := Buffer{}
	if b.Data != nil {
		out.Data = b.Data.Clone()
	}
	if b.IconName != nil {
		icon := *b.IconName
		out.IconName = &icon
	}
	return out
}

// SectionWriter 是编辑器需要的文档存储能力。
type SectionWriter interface {
	Section(id string) (resume.Section, bool)
	UpdateSectionData(ctx context.Context, id string, data resume.Content, iconName *string) (bool, error)
}

// Info 描述一个打开的会话。
type Info struct {
	ID        string      `json:"id"`
	SectionID string      `json:"sectionId"`
	Kind      resume.Kind `json:"kind"`
	Dirty     bool        `json:"dirty"`
	OpenedAt  time.Time   `json:"openedAt"`
}

type entry struct {
	sectionID string
	kind      resume.Kind
	openedAt  time.Time
	session   *Session[Buffer]

	mu         sync.Mutex
	lastActive time.Time
}

func (e *entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastActive = now
	e.mu.Unlock()
}

func (e *entry) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastActive)
}

// Registry 按会话 id 保存打开的编辑器。关闭后即移除，再次打开总是从存储中的模块数据开始。
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	writer   SectionWriter
	opts     []Option
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

// NewRegistry 创建通过 writer 提交的注册表，opts 作用于其打开的每个会话。
func NewRegistry(writer SectionWriter, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]*entry),
		writer:   writer,
		opts:     opts,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Open 以模块当前的 data 和图标开启编辑会话。
func (r *Registry) Open(sectionID string) (Info, Buffer, error) {
	sec, ok := r.writer.Section(sectionID)
	if !ok {
		return Info{}, Buffer{}, ErrSectionNotFound
	}
	icon := sec.IconName
	initial := Buffer{Data: sec.Data, IconName: &icon}
	if initial.Data == nil {
		initial.Data = resume.EmptyContent(sec.ContentKind())
	}

	id := r.newID()
	log := r.logger.With(slog.String("session_id", id), slog.String("section_id", sectionID))
	commit := func(ctx context.Context, b Buffer) error {
		found, err := r.writer.UpdateSectionData(ctx, sectionID, b.Data, b.IconName)
		if err != nil {
			return err
		}
		if !found {
			return ErrSectionNotFound
		}
		log.Debug("editor buffer committed")
		return nil
	}
	opts := append(append([]Option{}, r.opts...), WithLogger(log))

	now := r.now()
	e := &entry{
		sectionID:  sectionID,
		kind:       sec.ContentKind(),
		openedAt:   now.UTC(),
		session:    Open[Buffer](initial, commit, opts...),
		lastActive: now,
	}
	r.mu.Lock()
	r.sessions[id] = e
	r.mu.Unlock()

	log.Info("editor session opened")
	return e.info(id), initial.Clone(), nil
}

func (e *entry) info(id string) Info {
	return Info{
		ID:        id,
		SectionID: e.sectionID,
		Kind:      e.kind,
		Dirty:     e.session.Dirty(),
		OpenedAt:  e.openedAt,
	}
}

func (r *Registry) get(id string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	return e, ok
}

// Kind 返回会话接受的数据结构。
func (r *Registry) Kind(id string) (resume.Kind, bool) {
	e, ok := r.get(id)
	if !ok {
		return "", false
	}
	return e.kind, true
}

func (r *Registry) Info(id string) (Info, bool) {
	e, ok := r.get(id)
	if !ok {
		return Info{}, false
	}
	return e.info(id), true
}

// Update 替换会话缓冲区，IconName 为 nil 时保留原图标。
func (r *Registry) Update(id string, b Buffer) error {
	e, ok := r.get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if b.Data == nil || b.Data.Kind() != e.kind {
		return fmt.Errorf("%w: session edits %s data", resume.ErrShapeMismatch, e.kind)
	}
	if b.IconName == nil {
		b.IconName = e.session.Value().IconName
	}
	if err := e.session.Set(b); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			return ErrSessionNotFound
		}
		return err
	}
	e.touch(r.now())
	return nil
}

// Close 落盘并移除会话。
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	err := e.session.Close(ctx)
	r.logger.Info("editor session closed",
		slog.String("session_id", id),
		slog.String("section_id", e.sectionID),
		slog.Bool("flush_failed", err != nil),
	)
	return err
}

// CloseAll 在退出时落盘所有打开的会话。
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// CloseIdle 关闭超过 idle 未更新的会话（先落盘再移除），返回关闭的数量。
func (r *Registry) CloseIdle(ctx context.Context, idle time.Duration) int {
	now := r.now()
	r.mu.Lock()
	var ids []string
	for id, e := range r.sessions {
		if e.idleSince(now) >= idle {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()

	closed := 0
	for _, id := range ids {
		err := r.Close(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			continue
		}
		closed++
		if err != nil {
			r.logger.Warn("idle editor session flush failed", slog.String("session_id", id), slog.Any("error", err))
		}
	}
	if closed > 0 {
		r.logger.Info("idle editor sessions closed", slog.Int("count", closed))
	}
	return closed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
