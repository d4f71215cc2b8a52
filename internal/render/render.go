// Package render 生成简历的可打印 HTML 预览。
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"resumeBuilder/internal/icons"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/sections"
	"resumeBuilder/internal/storage"
)

// ImageSource 读取已存储的图片，例如上传的头像。
type ImageSource interface {
	ReadObject(ctx context.Context, key string) ([]byte, string, error)
}

// Result 是渲染后的预览。
type Result struct {
	HTML []byte
	// MissingKeys 列出无法内联、未出现在预览中的图片对象键。
	MissingKeys []string
}

type pageView struct {
	Number   int
	Basic    *basicView
	Sections []sectionView
}

type fieldView struct {
	Label string
	Value string
	Icon  icons.Icon
}

type basicView struct {
	Info      resume.BasicInfo
	AvatarSrc template.URL
	Fields    []fieldView
}

type sectionView struct {
	ID       string
	Title    string
	Icon     icons.Icon
	Kind     resume.Kind
	Timeline resume.Timeline
	List     resume.List
	Lines    []string
}

type documentView struct {
	Title  string
	Layout resume.Layout
	Pages  []pageView
}

// Renderer 渲染文档，可并发使用。
type Renderer struct {
	tmpl   *template.Template
	images ImageSource
	logger *slog.Logger
}

// New 解析预览模板。images 可为 nil，此时存储中的头像键会被记为缺失。
func New(images ImageSource, logger *slog.Logger) (*Renderer, error) {
	tmpl, err := template.New("preview").Parse(previewTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse preview template: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{tmpl: tmpl, images: images, logger: logger}, nil
}

// Render 生成预览 HTML，跳过隐藏模块。未开启多页模式时所有模块都在同一页。
func (r *Renderer) Render(ctx context.Context, doc resume.Document) (Result, error) {
	set := sections.Set(doc.Sections)
	view := documentView{Title: doc.Title, Layout: doc.Layout}
	if view.Layout == "" {
		view.Layout = resume.LayoutTopBottom
	}

	var missing []string
	basic, err := r.basic(ctx, set, &missing)
	if err != nil {
		return Result{}, err
	}

	if doc.PageSettings.EnableMultiPage && doc.PageSettings.TotalPages > 1 {
		for n := 1; n <= doc.PageSettings.TotalPages; n++ {
			view.Pages = append(view.Pages, pageView{Number: n, Sections: sectionViews(set.ByPage(n))})
		}
	} else {
		var visible []resume.Section
		for _, sec := range set.NonBasic() {
			if sec.Visible {
				visible = append(visible, sec)
			}
		}
		view.Pages = []pageView{{Number: 1, Sections: sectionViews(visible)}}
	}
	view.Pages[0].Basic = basic

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return Result{}, fmt.Errorf("execute preview template: %w", err)
	}
	return Result{HTML: buf.Bytes(), MissingKeys: missing}, nil
}

func (r *Renderer) basic(ctx context.Context, set sections.Set, missing *[]string) (*basicView, error) {
	sec, ok := set.Basic()
	if !ok || !sec.Visible {
		return nil, nil
	}
	info, _ := sec.Data.(resume.BasicInfo)
	view := &basicView{Info: info}
	for _, f := range info.CustomFields {
		view.Fields = append(view.Fields, fieldView{Label: f.Label, Value: f.Value, Icon: icons.Resolve(f.IconName)})
	}

	src, err := r.avatarSource(ctx, info.Avatar)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("avatar unavailable, skipping", slog.String("key", info.Avatar), slog.Any("error", err))
		*missing = append(*missing, info.Avatar)
		return view, nil
	}
	view.AvatarSrc = src
	return view, nil
}

// avatarSource 把存储中的头像内联为 data URI，data URI 与 http(s) 链接原样返回。
func (r *Renderer) avatarSource(ctx context.Context, avatar string) (template.URL, error) {
	avatar = strings.TrimSpace(avatar)
	switch {
	case avatar == "":
		return "", nil
	case strings.HasPrefix(avatar, "data:image/"),
		strings.HasPrefix(avatar, "https://"),
		strings.HasPrefix(avatar, "http://"):
		return template.URL(avatar), nil
	case storage.IsAvatarKey(avatar):
		if r.images == nil {
			return "", fmt.Errorf("no image source configured")
		}
		data, contentType, err := r.images.ReadObject(ctx, avatar)
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(contentType, "image/") {
			contentType = "image/png"
		}
		return template.URL(fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))), nil
	default:
		return "", fmt.Errorf("unsupported avatar reference")
	}
}

func sectionViews(secs []resume.Section) []sectionView {
	out := make([]sectionView, 0, len(secs))
	for _, sec := range secs {
		v := sectionView{
			ID:    sec.ID,
			Title: sec.Title,
			Icon:  icons.Resolve(sec.IconName),
			Kind:  sec.ContentKind(),
		}
		switch data := sec.Data.(type) {
		case resume.Timeline:
			v.Timeline = data
		case resume.List:
			v.List = data
		case resume.Text:
			v.Lines = textLines(data.Content)
		}
		out = append(out, v)
	}
	return out
}

func textLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
