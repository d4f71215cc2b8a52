package render

// previewTemplate 渲染 A4 预览。多页模式下每页一个 .a4-page，基本信息只出现在第一页。
const previewTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        @page { size: A4; margin: 0; }
        body { margin: 0; padding: 0; font-family: "PingFang SC", "Microsoft YaHei", sans-serif; font-size: 10.5pt; color: #222; }
        .a4-page { width: 794px; min-height: 1122px; padding: 40px; box-sizing: border-box; background: white; page-break-after: always; }
        .a4-page:last-child { page-break-after: auto; }
        .basic { display: flex; gap: 24px; align-items: center; margin-bottom: 16px; }
        .layout-side-by-side .basic { flex-direction: row; }
        .layout-top-bottom .basic { flex-direction: column; text-align: center; }
        .avatar { width: 96px; height: 120px; object-fit: cover; border-radius: 4px; }
        .name { font-size: 20pt; font-weight: 600; margin: 0; }
        .contacts span, .fields span { margin-right: 12px; }
        .section { margin-top: 14px; }
        .section h2 { font-size: 12pt; border-bottom: 1px solid #ddd; padding-bottom: 4px; margin: 0 0 8px; }
        .icon { display: inline-block; min-width: 1em; margin-right: 4px; color: #888; font-size: 8pt; }
        .entry { margin-bottom: 8px; }
        .entry-head { display: flex; justify-content: space-between; font-weight: 600; }
        .entry-sub { color: #555; }
        .entry-desc, .text p { white-space: pre-wrap; margin: 2px 0; }
        ol { margin: 0; padding-left: 20px; }
    </style>
</head>
<body class="layout-{{.Layout}}">
{{range .Pages}}
    <div class="a4-page" data-page="{{.Number}}">
    {{with .Basic}}
        <header class="basic">
            {{if .AvatarSrc}}<img class="avatar" src="{{.AvatarSrc}}" alt="avatar">{{end}}
            <div>
                <h1 class="name">{{.Info.Name}}</h1>
                <div class="contacts">
                    {{if .Info.Phone}}<span>{{.Info.Phone}}</span>{{end}}
                    {{if .Info.Email}}<span>{{.Info.Email}}</span>{{end}}
                    {{if .Info.Gender}}<span>{{.Info.Gender}}</span>{{end}}
                    {{if .Info.Age}}<span>{{.Info.Age}}</span>{{end}}
                    {{if .Info.Location}}<span>{{.Info.Location}}</span>{{end}}
                    {{if .Info.Website}}<span>{{.Info.Website}}</span>{{end}}
                </div>
                {{if .Fields}}<div class="fields">
                    {{range .Fields}}<span><i class="icon" data-icon="{{.Icon.Name}}">{{.Icon.Component}}</i>{{.Label}}{{if .Value}}: {{.Value}}{{end}}</span>{{end}}
                </div>{{end}}
            </div>
        </header>
    {{end}}
    {{range .Sections}}
        <section class="section" data-section="{{.ID}}">
            <h2><i class="icon" data-icon="{{.Icon.Name}}">{{.Icon.Component}}</i>{{.Title}}</h2>
            {{if eq .Kind "timeline"}}
                {{range .Timeline}}
                <div class="entry">
                    <div class="entry-head"><span>{{.Title}}</span>{{if or .StartDate .EndDate}}<span>{{.StartDate}} - {{.EndDate}}</span>{{end}}</div>
                    {{if or .Subtitle .SecondarySubtitle}}<div class="entry-sub">{{.Subtitle}}{{if .SecondarySubtitle}} · {{.SecondarySubtitle}}{{end}}</div>{{end}}
                    {{if .Description}}<div class="entry-desc">{{.Description}}</div>{{end}}
                </div>
                {{end}}
            {{else if eq .Kind "list"}}
                <ol>{{range .List}}<li>{{.Content}}</li>{{end}}</ol>
            {{else if eq .Kind "text"}}
                <div class="text">{{range .Lines}}<p>{{.}}</p>{{end}}</div>
            {{end}}
        </section>
    {{end}}
    </div>
{{end}}
</body>
</html>
`
