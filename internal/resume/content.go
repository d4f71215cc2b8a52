package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind 标识 data 的具体结构。
type Kind string

const (
	KindBasic    Kind = "basic"
	KindTimeline Kind = "timeline"
	KindList     Kind = "list"
	KindText     Kind = "text"
)

// ErrShapeMismatch 表示 data 与模块声明的结构不符。
var ErrShapeMismatch = errors.New("section data does not match its editor type")

// Content 是模块 data 的联合类型（BasicInfo / Timeline / List / Text）。
type Content interface {
	Kind() Kind
	Clone() Content
	isContent()
}

// CustomField 是基本信息中的自定义字段。
type CustomField struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	IconName string `json:"iconName"`
}

// BasicInfo 是 basic 模块的数据。
type BasicInfo struct {
	Avatar       string        `json:"avatar,omitempty"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Gender       string        `json:"gender,omitempty"`
	Age          string        `json:"age,omitempty"`
	Location     string        `json:"location,omitempty"`
	Website      string        `json:"website,omitempty"`
	CustomFields []CustomField `json:"customFields,omitempty"`
}

// TimelineItem 是时间线中的一条记录。
type TimelineItem struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Subtitle          string `json:"subtitle"`
	SecondarySubtitle string `json:"secondarySubtitle"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	Description       string `json:"description"`
}

// ListItem 是列表中的一行。
type ListItem struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Timeline 是时间线模块的有序记录。
type Timeline []TimelineItem

// List 是列表模块的有序条目。
type List []ListItem

// Text 是文本模块的整段内容。
type Text struct {
	Content string `json:"content"`
}

func (BasicInfo) Kind() Kind { return KindBasic }
func (Timeline) Kind() Kind  { return KindTimeline }
func (List) Kind() Kind      { return KindList }
func (Text) Kind() Kind      { return KindText }

func (BasicInfo) isContent() {}
func (Timeline) isContent()  {}
func (List) isContent()      {}
func (Text) isContent()      {}

func (b BasicInfo) Clone() Content {
	out := b
	if b.CustomFields != nil {
		out.CustomFields = append([]CustomField(nil), b.CustomFields...)
	}
	return out
}

func (t Timeline) Clone() Content {
	if t == nil {
		return Timeline{}
	}
	return append(Timeline(nil), t...)
}

func (l List) Clone() Content {
	if l == nil {
		return List{}
	}
	return append(List(nil), l...)
}

func (t Text) Clone() Content { return t }

// MarshalJSON 把 nil 时间线编码为空数组。
func (t Timeline) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]TimelineItem(t))
}

// MarshalJSON 把 nil 列表编码为空数组。
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ListItem(l))
}

// EmptyContent 返回指定结构的空值。
func EmptyContent(kind Kind) Content {
	switch kind {
	case KindBasic:
		return BasicInfo{}
	case KindList:
		return List{}
	case KindText:
		return Text{}
	default:
		return Timeline{}
	}
}

// DecodeContent 按 kind 解码 data，空内容或 null 解码为空结构。
func DecodeContent(kind Kind, raw []byte) (Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return EmptyContent(kind), nil
	}

	var (
		out Content
		err error
	)
	switch kind {
	case KindBasic:
		var v BasicInfo
		err = json.Unmarshal(trimmed, &v)
		out = v
	case KindTimeline:
		var v Timeline
		err = json.Unmarshal(trimmed, &v)
		out = v
	case KindList:
		var v List
		err = json.Unmarshal(trimmed, &v)
		out = v
	case KindText:
		var v Text
		err = json.Unmarshal(trimmed, &v)
		out = v
	default:
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s data: %v", ErrShapeMismatch, kind, err)
	}
	return out, nil
}

type sectionJSON struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	IconName   string          `json:"iconName"`
	Type       SectionType     `json:"type"`
	EditorType EditorType      `json:"editorType,omitempty"`
	Visible    bool            `json:"visible"`
	Order      int             `json:"order"`
	PageNumber int             `json:"pageNumber,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// MarshalJSON 按结构把 data 编码为对象或数组。
func (s Section) MarshalJSON() ([]byte, error) {
	data := s.Data
	if data == nil {
		data = EmptyContent(s.ContentKind())
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode section %q data: %w", s.ID, err)
	}
	return json.Marshal(sectionJSON{
		ID:         s.ID,
		Title:      s.Title,
		IconName:   s.IconName,
		Type:       s.Type,
		EditorType: s.EditorType,
		Visible:    s.Visible,
		Order:      s.Order,
		PageNumber: s.PageNumber,
		Data:       raw,
	})
}

// UnmarshalJSON 根据 type 与 editorType 解码 data。
func (s *Section) UnmarshalJSON(b []byte) error {
	var wire sectionJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	out := Section{
		ID:         wire.ID,
		Title:      wire.Title,
		IconName:   wire.IconName,
		Type:       wire.Type,
		EditorType: wire.EditorType,
		Visible:    wire.Visible,
		Order:      wire.Order,
		PageNumber: wire.PageNumber,
	}
	if !out.IsBasic() && out.EditorType != "" && !out.EditorType.Valid() {
		return fmt.Errorf("section %q: unknown editor type %q", wire.ID, wire.EditorType)
	}
	data, err := DecodeContent(out.ContentKind(), wire.Data)
	if err != nil {
		return fmt.Errorf("section %q: %w", wire.ID, err)
	}
	out.Data = data
	*s = out
	return nil
}
