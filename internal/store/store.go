// Package store 持有唯一的简历文档：从 Backend 加载，串行执行每次修改，
// 并在每次修改后把整份文档写回。
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumeBuilder/internal/events"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/sections"
)

// DefaultKey 是文档的存储键。
const DefaultKey = "resume-data"

// 开启多页模式时的默认页数。
const defaultMultiPageTotal = 2

var (
	// ErrInvalidPageSettings 表示 totalPages 小于 1。
	ErrInvalidPageSettings = errors.New("invalid page settings")
	// ErrInvalidOrder 表示排序请求不是当前非基本信息模块 id 的一个排列。
	ErrInvalidOrder = errors.New("invalid section order")
	// ErrInvalidLayout 表示未知的布局。
	ErrInvalidLayout = errors.New("invalid layout")
)

// Observer 在每次修改提交或失败后被调用，用于指标。
type Observer func(op string, elapsed time.Duration, err error)

// Meta 是文档级字段的部分更新。
type Meta struct {
	Title    *string        `json:"title,omitempty"`
	Template *string        `json:"template,omitempty"`
	Layout   *resume.Layout `json:"layout,omitempty"`
}

// Option 配置 Store。
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger 设置日志。
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher 在每次提交后发布变更事件。
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithObserver 注册修改观察者。
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithIDGenerator 替换新模块 id 的生成方式。
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store 可并发使用，操作按获取锁的顺序逐个执行。
type Store struct {
	mu        sync.RWMutex
	doc       resume.Document
	backend   Backend
	key       string
	logger    *slog.Logger
	publisher events.Publisher
	observer  Observer
	newID     func() string
	now       func() time.Time
}

// Open 加载配置键下的文档，尚无存储时写入默认简历。
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend:   backend,
		key:       DefaultKey,
		logger:    slog.Default(),
		publisher: events.Discard{},
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "store"), slog.String("key", s.key))

	data, err := backend.Load(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		seed := resume.SeedDocument()
		if err := s.persist(ctx, seed); err != nil {
			return nil, err
		}
		s.doc = seed
		s.logger.Info("seeded document")
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc, err := resume.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	s.doc = doc
	s.logger.Info("loaded document", slog.Int("sections", len(doc.Sections)))
	return s, nil
}

func (s *Store) Key() string { return s.key }

func (s *Store) persist(ctx context.Context, doc resume.Document) error {
	data, err := resume.Encode(doc)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("persist document: %w", err)
	}
	return nil
}

// mutate 在文档副本上执行 fn，写入成功后才替换内存中的文档。
// fn 返回 false 表示没有变化，此时不写入。
func (s *Store) mutate(ctx context.Context, op, sectionID string, fn func(*resume.Document) (bool, error)) (bool, error) {
	start := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	changed, err := fn(&next)
	if err == nil && changed {
		err = s.persist(ctx, next)
	}
	if s.observer != nil && (changed || err != nil) {
		s.observer(op, s.now().Sub(start), err)
	}
	if err != nil {
		s.logger.Error("mutation failed", slog.String("op", op), slog.String("section_id", sectionID), slog.Any("error", err))
		return false, err
	}
	if !changed {
		s.logger.Debug("mutation skipped", slog.String("op", op), slog.String("section_id", sectionID))
		return false, nil
	}
	s.doc = next

	ev := events.Event{
		Type:       events.TypeDocumentChanged,
		Op:         op,
		DocumentID: next.ID,
		SectionID:  sectionID,
		At:         s.now().UTC(),
	}
	if err := events.PublishJSON(ctx, s.publisher, ev); err != nil {
		s.logger.Warn("publish change event failed", slog.String("op", op), slog.Any("error", err))
	}
	return true, nil
}

func (s *Store) mutateSections(ctx context.Context, op, sectionID string, fn func(sections.Set) (sections.Set, bool)) (bool, error) {
	return s.mutate(ctx, op, sectionID, func(doc *resume.Document) (bool, error) {
		out, ok := fn(sections.Set(doc.Sections))
		if !ok {
			return false, nil
		}
		doc.Sections = out
		return true, nil
	})
}

// Snapshot 返回当前文档的深拷贝。
func (s *Store) Snapshot() resume.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

func (s *Store) set() sections.Set {
	return sections.Set(s.doc.Sections)
}

func (s *Store) Section(id string) (resume.Section, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set().Get(id)
}

// BasicSection 返回基本信息模块。
func (s *Store) BasicSection() (resume.Section, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set().Basic()
}

// NonBasicSections 按展示顺序返回非基本信息模块。
func (s *Store) NonBasicSections() []resume.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set().NonBasic()
}

// SectionsByPage 返回某一页上可见的非基本信息模块。
func (s *Store) SectionsByPage(page int) []resume.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set().ByPage(page)
}

// PageCounts 返回每页的非基本信息模块数。
func (s *Store) PageCounts() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sections.PageCounts(s.set(), s.doc.PageSettings.TotalPages)
}

// UpdateSectionData 替换模块的 data，iconName 非 nil 时同时更新图标。
// 未知 id 静默忽略并通过返回的 bool 告知；结构与编辑器类型不符的 data 会被拒绝。
func (s *Store) UpdateSectionData(ctx context.Context, id string, data resume.Content, iconName *string) (bool, error) {
	return s.mutate(ctx, "update_section_data", id, func(doc *resume.Document) (bool, error) {
		set := sections.Set(doc.Sections)
		sec, ok := set.Get(id)
		if !ok {
			return false, nil
		}
		if data != nil && data.Kind() != sec.ContentKind() {
			return false, fmt.Errorf("%w: section %q expects %s, got %s", resume.ErrShapeMismatch, id, sec.ContentKind(), data.Kind())
		}
		doc.Sections, _ = set.UpdateData(id, data, iconName)
		return true, nil
	})
}

// UpdateSectionProps 合并模块属性。
func (s *Store) UpdateSectionProps(ctx context.Context, id string, p sections.Props) (bool, error) {
	return s.mutateSections(ctx, "update_section_props", id, func(set sections.Set) (sections.Set, bool) {
		return set.UpdateProps(id, p)
	})
}

// ChangeEditorType 转换模块 data 并切换编辑器类型。
func (s *Store) ChangeEditorType(ctx context.Context, id string, to resume.EditorType) (bool, error) {
	return s.mutateSections(ctx, "change_editor_type", id, func(set sections.Set) (sections.Set, bool) {
		return set.ChangeEditorType(id, to)
	})
}

// Reorder 用基本信息模块加上 ordered 替换模块集合。
func (s *Store) Reorder(ctx context.Context, ordered []resume.Section) error {
	_, err := s.mutateSections(ctx, "reorder_sections", "", func(set sections.Set) (sections.Set, bool) {
		return set.Reorder(ordered), true
	})
	return err
}

// ReorderIDs 按 id 排序，ids 必须恰好包含每个非基本信息模块一次。
func (s *Store) ReorderIDs(ctx context.Context, ids []string) error {
	_, err := s.mutate(ctx, "reorder_sections", "", func(doc *resume.Document) (bool, error) {
		set := sections.Set(doc.Sections)
		current := set.NonBasic()
		if len(ids) != len(current) {
			return false, fmt.Errorf("%w: want %d ids, got %d", ErrInvalidOrder, len(current), len(ids))
		}
		ordered := make([]resume.Section, 0, len(ids))
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				return false, fmt.Errorf("%w: duplicate id %q", ErrInvalidOrder, id)
			}
			seen[id] = struct{}{}
			sec, ok := set.Get(id)
			if !ok || sec.IsBasic() {
				return false, fmt.Errorf("%w: unknown id %q", ErrInvalidOrder, id)
			}
			ordered = append(ordered, sec)
		}
		doc.Sections = set.Reorder(ordered)
		return true, nil
	})
	return err
}

// AddSection 追加一个完整的模块。
func (s *Store) AddSection(ctx context.Context, sec resume.Section) error {
	_, err := s.mutateSections(ctx, "add_section", sec.ID, func(set sections.Set) (sections.Set, bool) {
		return set.Add(sec), true
	})
	return err
}

// AddCustomSection 在末尾追加默认的自定义模块。
func (s *Store) AddCustomSection(ctx context.Context) (resume.Section, error) {
	id := s.newID()
	var added resume.Section
	_, err := s.mutateSections(ctx, "add_section", id, func(set sections.Set) (sections.Set, bool) {
		added = sections.NewCustomSection(id, set.NextOrder())
		return set.Add(added), true
	})
	if err != nil {
		return resume.Section{}, err
	}
	return added, nil
}

// DeleteSection 删除模块，基本信息模块不可删除。
func (s *Store) DeleteSection(ctx context.Context, id string) (bool, error) {
	return s.mutateSections(ctx, "delete_section", id, func(set sections.Set) (sections.Set, bool) {
		if sec, ok := set.Get(id); ok && sec.IsBasic() {
			return set, false
		}
		return set.Delete(id)
	})
}

// ToggleVisibility 切换模块的显示状态。
func (s *Store) ToggleVisibility(ctx context.Context, id string) (bool, error) {
	return s.mutateSections(ctx, "toggle_visibility", id, func(set sections.Set) (sections.Set, bool) {
		return set.ToggleVisibility(id)
	})
}

// SetPages 批量分配页码。
func (s *Store) SetPages(ctx context.Context, updates []sections.PageUpdate) error {
	_, err := s.mutateSections(ctx, "set_pages", "", func(set sections.Set) (sections.Set, bool) {
		return set.SetPages(updates), true
	})
	return err
}

// UpdatePageSettings 替换分页设置。
func (s *Store) UpdatePageSettings(ctx context.Context, ps resume.PageSettings) error {
	if ps.TotalPages < 1 {
		return fmt.Errorf("%w: totalPages must be at least 1", ErrInvalidPageSettings)
	}
	_, err := s.mutate(ctx, "update_page_settings", "", func(doc *resume.Document) (bool, error) {
		doc.PageSettings = ps
		return true, nil
	})
	return err
}

// EnableMultiPage 开启多页模式，totalPages 小于 2 时使用 2。
func (s *Store) EnableMultiPage(ctx context.Context, totalPages int) error {
	if totalPages < 2 {
		totalPages = defaultMultiPageTotal
	}
	_, err := s.mutate(ctx, "enable_multi_page", "", func(doc *resume.Document) (bool, error) {
		doc.PageSettings = resume.PageSettings{EnableMultiPage: true, TotalPages: totalPages}
		return true, nil
	})
	return err
}

// DisableMultiPage 关闭多页模式，并把所有模块移回第 1 页。
func (s *Store) DisableMultiPage(ctx context.Context) error {
	_, err := s.mutate(ctx, "disable_multi_page", "", func(doc *resume.Document) (bool, error) {
		doc.PageSettings = resume.DefaultPageSettings()
		doc.Sections = sections.ResetPages(sections.Set(doc.Sections))
		return true, nil
	})
	return err
}

// AutoAssignPages 把非基本信息模块轮流分配到各页。
func (s *Store) AutoAssignPages(ctx context.Context) error {
	_, err := s.mutate(ctx, "auto_assign_pages", "", func(doc *resume.Document) (bool, error) {
		doc.Sections = sections.AutoAssignPages(sections.Set(doc.Sections), doc.PageSettings.TotalPages)
		return true, nil
	})
	return err
}

// ResetPageAssignments 把所有非基本信息模块移回第 1 页。
func (s *Store) ResetPageAssignments(ctx context.Context) error {
	_, err := s.mutate(ctx, "reset_page_assignments", "", func(doc *resume.Document) (bool, error) {
		doc.Sections = sections.ResetPages(sections.Set(doc.Sections))
		return true, nil
	})
	return err
}

// UpdateMeta 合并文档级字段。
func (s *Store) UpdateMeta(ctx context.Context, m Meta) error {
	if m.Layout != nil && !m.Layout.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLayout, *m.Layout)
	}
	_, err := s.mutate(ctx, "update_meta", "", func(doc *resume.Document) (bool, error) {
		if m.Title != nil {
			doc.Title = *m.Title
		}
		if m.Template != nil {
			doc.Template = *m.Template
		}
		if m.Layout != nil {
			doc.Layout = *m.Layout
		}
		return true, nil
	})
	return err
}

// Reset 恢复为默认简历。
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.mutate(ctx, "reset", "", func(doc *resume.Document) (bool, error) {
		*doc = resume.SeedDocument()
		return true, nil
	})
	return err
}

// Export 返回可下载的文档 JSON（不含头像）。
func (s *Store) Export() ([]byte, error) {
	return resume.Export(s.Snapshot())
}

// Import 用校验通过的内容整体替换文档，出错时当前文档不变。
func (s *Store) Import(ctx context.Context, data []byte) error {
	doc, err := resume.Import(data)
	if err != nil {
		return fmt.Errorf("import document: %w", err)
	}
	_, err = s.mutate(ctx, "import", "", func(cur *resume.Document) (bool, error) {
		*cur = doc
		return true, nil
	})
	return err
}
