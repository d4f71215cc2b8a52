// Package sections 实现简历模块集合上的操作。所有修改都返回新的 Set，不改动接收者。
package sections

import (
	"sort"

	"resumeBuilder/internal/resume"
)

const (
	// 基本信息模块固定排在第一位。
	basicOrder = 1
	// DefaultCustomTitle 是新增自定义模块的标题。
	DefaultCustomTitle = "new section"
	// DefaultCustomIcon 是新增自定义模块的图标。
	DefaultCustomIcon = "star"
)

// Set 是一份文档的模块集合，展示顺序由 Order 决定，与存储顺序无关。
type Set []resume.Section

// Props 是模块属性的部分更新，nil 字段保持不变。
type Props struct {
	Title      *string            `json:"title,omitempty"`
	IconName   *string            `json:"iconName,omitempty"`
	Visible    *bool              `json:"visible,omitempty"`
	EditorType *resume.EditorType `json:"editorType,omitempty"`
	PageNumber *int               `json:"pageNumber,omitempty"`
	Order      *int               `json:"order,omitempty"`
}

// PageUpdate 把模块分配到某一页。
type PageUpdate struct {
	SectionID  string `json:"sectionId" binding:"required"`
	PageNumber int    `json:"pageNumber" binding:"required,min=1"`
}

func (s Set) index(id string) int {
	for i, sec := range s {
		if sec.ID == id {
			return i
		}
	}
	return -1
}

func (s Set) clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for i, sec := range s {
		out[i] = sec.Clone()
	}
	return out
}

func (s Set) replace(i int, fn func(*resume.Section)) Set {
	out := s.clone()
	fn(&out[i])
	return out
}

// UpdateData 整体替换模块的 data，iconName 非 nil 时同时更新图标。id 不存在时返回 false。
func (s Set) UpdateData(id string, data resume.Content, iconName *string) (Set, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	return s.replace(i, func(sec *resume.Section) {
		if data != nil {
			sec.Data = data.Clone()
		} else {
			sec.Data = resume.EmptyContent(sec.ContentKind())
		}
		if iconName != nil {
			sec.IconName = *iconName
		}
	}), true
}

// UpdateProps 合并非 nil 的属性，不改动 data。
// 例外是 EditorType 发生变化：data 会随之转换，保证结构与编辑器类型一致。
func (s Set) UpdateProps(id string, p Props) (Set, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	out := s
	if p.EditorType != nil && *p.EditorType != s[i].EffectiveEditorType() {
		out, _ = s.ChangeEditorType(id, *p.EditorType)
	}
	return out.replace(i, func(sec *resume.Section) {
		if p.Title != nil {
			sec.Title = *p.Title
		}
		if p.IconName != nil {
			sec.IconName = *p.IconName
		}
		if p.Visible != nil {
			sec.Visible = *p.Visible
		}
		if p.EditorType != nil && !sec.IsBasic() {
			sec.EditorType = p.EditorType.OrDefault()
		}
		if p.PageNumber != nil && !sec.IsBasic() {
			sec.PageNumber = *p.PageNumber
		}
		if p.Order != nil {
			sec.Order = *p.Order
		}
	}), true
}

// ChangeEditorType 把 data 转换为新的编辑器类型并一并写入。基本信息模块没有编辑器类型，保持原样。
func (s Set) ChangeEditorType(id string, to resume.EditorType) (Set, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	if s[i].IsBasic() {
		return s, true
	}
	return s.replace(i, func(sec *resume.Section) {
		from := sec.EffectiveEditorType()
		sec.Data = resume.Convert(sec.Data, from, to).Clone()
		sec.EditorType = to.OrDefault()
		if sec.Type != resume.SectionCustom {
			sec.Type = resume.SectionType(sec.EditorType)
		}
	}), true
}

// Reorder 用基本信息模块加上 ordered 替换整个集合：基本信息 order 为 1，
// 其余 order = 下标 + 2。ordered 中的基本信息模块会被忽略。
func (s Set) Reorder(ordered []resume.Section) Set {
	out := make(Set, 0, len(ordered)+1)
	if basic, ok := s.Basic(); ok {
		basic = basic.Clone()
		basic.Order = basicOrder
		out = append(out, basic)
	}
	pos := 0
	for _, sec := range ordered {
		if sec.IsBasic() {
			continue
		}
		sec = sec.Clone()
		sec.Order = pos + 2
		out = append(out, sec)
		pos++
	}
	return out
}

// Add 追加一个完整的模块。
func (s Set) Add(sec resume.Section) Set {
	out := s.clone()
	return append(out, sec.Clone())
}

func (s Set) Delete(id string) (Set, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	out := make(Set, 0, len(s)-1)
	for j, sec := range s {
		if j != i {
			out = append(out, sec.Clone())
		}
	}
	return out, true
}

// ToggleVisibility 切换模块的显示状态。
func (s Set) ToggleVisibility(id string) (Set, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	return s.replace(i, func(sec *resume.Section) {
		sec.Visible = !sec.Visible
	}), true
}

// SetPages 批量分配页码。基本信息模块以及小于 1 的页码会被跳过。
func (s Set) SetPages(updates []PageUpdate) Set {
	pages := make(map[string]int, len(updates))
	for _, u := range updates {
		if u.PageNumber >= 1 {
			pages[u.SectionID] = u.PageNumber
		}
	}
	out := s.clone()
	for i := range out {
		if out[i].IsBasic() {
			continue
		}
		if page, ok := pages[out[i].ID]; ok {
			out[i].PageNumber = page
		}
	}
	return out
}

func (s Set) Get(id string) (resume.Section, bool) {
	i := s.index(id)
	if i < 0 {
		return resume.Section{}, false
	}
	return s[i].Clone(), true
}

// Basic 返回基本信息模块。
func (s Set) Basic() (resume.Section, bool) {
	for _, sec := range s {
		if sec.IsBasic() {
			return sec.Clone(), true
		}
	}
	return resume.Section{}, false
}

// NonBasic 返回按 order 排序的非基本信息模块，order 相同时保持存储顺序。
func (s Set) NonBasic() []resume.Section {
	return s.filterSorted(func(sec resume.Section) bool { return !sec.IsBasic() })
}

// ByPage 返回某一页上可见的非基本信息模块，按 order 排序。
func (s Set) ByPage(page int) []resume.Section {
	return s.filterSorted(func(sec resume.Section) bool {
		return !sec.IsBasic() && sec.Visible && sec.EffectivePage() == page
	})
}

func (s Set) filterSorted(keep func(resume.Section) bool) []resume.Section {
	out := make([]resume.Section, 0, len(s))
	for _, sec := range s {
		if keep(sec) {
			out = append(out, sec.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// NextOrder 返回新模块的 order：当前最大值加一，且不小于 2。
func (s Set) NextOrder() int {
	highest := basicOrder
	for _, sec := range s {
		if !sec.IsBasic() && sec.Order > highest {
			highest = sec.Order
		}
	}
	return highest + 1
}

// NewCustomSection 构造默认的自定义模块：可见、空时间线、默认标题和图标。
func NewCustomSection(id string, order int) resume.Section {
	return resume.Section{
		ID:         id,
		Title:      DefaultCustomTitle,
		IconName:   DefaultCustomIcon,
		Type:       resume.SectionCustom,
		EditorType: resume.EditorTimeline,
		Visible:    true,
		Order:      order,
		Data:       resume.Timeline{},
	}
}
