package resume

// SectionType 标识模块的业务类别。
type SectionType string

const (
	SectionBasic    SectionType = "basic"
	SectionTimeline SectionType = "timeline"
	SectionList     SectionType = "list"
	SectionText     SectionType = "text"
	SectionCustom   SectionType = "custom"
)

// Valid 报告 t 是否为已知的模块类型。
func (t SectionType) Valid() bool {
	switch t {
	case SectionBasic, SectionTimeline, SectionList, SectionText, SectionCustom:
		return true
	}
	return false
}

// EditorType 标识模块 data 的结构（时间线 / 列表 / 文本）。
type EditorType string

const (
	EditorTimeline EditorType = "timeline"
	EditorList     EditorType = "list"
	EditorText     EditorType = "text"
)

// OrDefault 在未设置时返回 EditorTimeline。
func (t EditorType) OrDefault() EditorType {
	if t == "" {
		return EditorTimeline
	}
	return t
}

// Valid 报告 t 是否为已知的编辑器类型。
func (t EditorType) Valid() bool {
	switch t {
	case EditorTimeline, EditorList, EditorText:
		return true
	}
	return false
}

// Kind 返回编辑器类型对应的 data 结构。
func (t EditorType) Kind() Kind {
	switch t.OrDefault() {
	case EditorList:
		return KindList
	case EditorText:
		return KindText
	default:
		return KindTimeline
	}
}

// Layout 是预览的布局方式。
type Layout string

const (
	LayoutSideBySide Layout = "side-by-side"
	LayoutTopBottom  Layout = "top-bottom"
)

func (l Layout) Valid() bool {
	return l == LayoutSideBySide || l == LayoutTopBottom
}

// PageSettings 描述多页模式的全局设置。
type PageSettings struct {
	EnableMultiPage bool `json:"enableMultiPage"`
	TotalPages      int  `json:"totalPages" validate:"min=1"`
}

// DefaultPageSettings 是单页模式，导入缺少 pageSettings 的旧文件时使用。
func DefaultPageSettings() PageSettings {
	return PageSettings{EnableMultiPage: false, TotalPages: 1}
}

// Document 表示一整份简历。
type Document struct {
	ID           string       `json:"id" validate:"required"`
	Title        string       `json:"title"`
	Template     string       `json:"template"`
	Layout       Layout       `json:"layout" validate:"omitempty,oneof=side-by-side top-bottom"`
	PageSettings PageSettings `json:"pageSettings"`
	Sections     []Section    `json:"sections" validate:"required,unique=ID,dive"`
}

// Section 表示简历中的一个模块。data 的结构由 Type（basic）或 EditorType 决定。
type Section struct {
	ID         string      `json:"id" validate:"required"`
	Title      string      `json:"title"`
	IconName   string      `json:"iconName"`
	Type       SectionType `json:"type" validate:"oneof=basic timeline list text custom"`
	EditorType EditorType  `json:"editorType,omitempty" validate:"omitempty,oneof=timeline list text"`
	Visible    bool        `json:"visible"`
	Order      int         `json:"order"`
	PageNumber int         `json:"pageNumber,omitempty" validate:"min=0"`
	Data       Content     `json:"data" validate:"-"`
}

// IsBasic 报告 s 是否为基本信息模块。
func (s Section) IsBasic() bool {
	return s.Type == SectionBasic
}

// EffectiveEditorType 返回编辑器类型，默认 timeline。
func (s Section) EffectiveEditorType() EditorType {
	return s.EditorType.OrDefault()
}

// EffectivePage 返回所在页码，默认第 1 页。
func (s Section) EffectivePage() int {
	if s.PageNumber <= 0 {
		return 1
	}
	return s.PageNumber
}

// ContentKind 返回 Data 应有的结构。
func (s Section) ContentKind() Kind {
	if s.IsBasic() {
		return KindBasic
	}
	return s.EffectiveEditorType().Kind()
}

// Clone 返回模块的深拷贝。
func (s Section) Clone() Section {
	out := s
	if s.Data != nil {
		out.Data = s.Data.Clone()
	}
	return out
}

// Clone 返回文档的深拷贝。
func (d Document) Clone() Document {
	out := d
	if d.Sections != nil {
		out.Sections = make([]Section, len(d.Sections))
		for i, sec := range d.Sections {
			out.Sections[i] = sec.Clone()
		}
	}
	return out
}

// BasicSection 返回基本信息模块。
func (d Document) BasicSection() (Section, bool) {
	for _, sec := range d.Sections {
		if sec.IsBasic() {
			return sec, true
		}
	}
	return Section{}, false
}
