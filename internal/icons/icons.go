// Package icons 把任意图标名解析为预览可绘制的固定图标集，未知名称退化为兜底图标。
package icons

import (
	"sort"
	"strings"
)

// Name 是 kebab-case 的图标名，例如 "graduation-cap"。
type Name string

// Fallback 在名称为空或未知时使用。
const Fallback Name = "circle-help"

// Icon 是图标集中的一项。
type Icon struct {
	Name      Name
	Component string
}

var known = map[Name]struct{}{
	"award": {}, "book": {}, "book-open": {}, "briefcase": {}, "building": {},
	"calendar": {}, "camera": {}, "check": {}, "chevron-down": {}, "chevron-up": {},
	"circle-help": {}, "clock": {}, "code": {}, "cpu": {}, "database": {},
	"edit": {}, "file-text": {}, "flag": {}, "github": {}, "globe": {},
	"graduation-cap": {}, "grip-vertical": {}, "heart": {}, "home": {}, "languages": {},
	"layers": {}, "lightbulb": {}, "link": {}, "linkedin": {}, "list": {},
	"mail": {}, "map-pin": {}, "medal": {}, "message-circle": {}, "music": {},
	"palette": {}, "pen-tool": {}, "phone": {}, "plus": {}, "rocket": {},
	"settings": {}, "smile": {}, "star": {}, "target": {}, "terminal": {},
	"trash-2": {}, "trophy": {}, "tv": {}, "type": {}, "user": {},
	"users": {}, "wrench": {}, "x": {}, "zap": {},
}

// ComponentName 把 kebab-case 名称转换为图标组件名，例如 "map-pin" -> "MapPin"。
func ComponentName(name string) string {
	parts := strings.Split(name, "-")
	var sb strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// Lookup 在 name 属于图标集时返回对应图标。
func Lookup(name string) (Icon, bool) {
	n := Name(strings.TrimSpace(name))
	if _, ok := known[n]; !ok {
		return Icon{}, false
	}
	return Icon{Name: n, Component: ComponentName(string(n))}, true
}

// Valid 报告 name 是否属于图标集。
func Valid(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Resolve 返回 name 对应的图标，否则返回兜底图标。
func Resolve(name string) Icon {
	if icon, ok := Lookup(name); ok {
		return icon
	}
	return Icon{Name: Fallback, Component: ComponentName(string(Fallback))}
}

// Names 按字典序列出图标集，供选择器使用。
func Names() []Name {
	out := make([]Name, 0, len(known))
	for n := range known {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
