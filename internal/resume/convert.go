package resume

import (
	"strconv"
	"strings"
)

// 文本转时间线时唯一一条记录的 id。
const textTimelineID = "1"

// Convert 把 from 类型的 data 转换为 to 类型的结构，不会失败也不会修改入参。
// 类型相同、未知组合或 data 与 from 不符时原样返回。
func Convert(data Content, from, to EditorType) Content {
	from, to = from.OrDefault(), to.OrDefault()
	if from == to {
		return data
	}

	switch to {
	case EditorTimeline:
		switch from {
		case EditorList:
			if items, ok := data.(List); ok {
				return listToTimeline(items)
			}
		case EditorText:
			if text, ok := data.(Text); ok {
				return textToTimeline(text)
			}
		}
	case EditorList:
		switch from {
		case EditorTimeline:
			if items, ok := data.(Timeline); ok {
				return timelineToList(items)
			}
		case EditorText:
			if text, ok := data.(Text); ok {
				return textToList(text)
			}
		}
	case EditorText:
		switch from {
		case EditorTimeline:
			if items, ok := data.(Timeline); ok {
				return timelineToText(items)
			}
		case EditorList:
			if items, ok := data.(List); ok {
				return listToText(items)
			}
		}
	}

	return data
}

func listToTimeline(items List) Timeline {
	out := make(Timeline, 0, len(items))
	for _, item := range items {
		out = append(out, TimelineItem{ID: item.ID, Title: item.Content})
	}
	return out
}

func textToTimeline(text Text) Timeline {
	return Timeline{{ID: textTimelineID, Title: text.Content}}
}

func timelineToList(items Timeline) List {
	out := make(List, 0, len(items))
	for _, item := range items {
		content := item.Title
		if content == "" {
			content = item.Description
		}
		out = append(out, ListItem{ID: item.ID, Content: content})
	}
	return out
}

func textToList(text Text) List {
	out := List{}
	for _, line := range strings.Split(text.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, ListItem{ID: strconv.Itoa(len(out) + 1), Content: line})
	}
	return out
}

func timelineToText(items Timeline) Text {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		parts := make([]string, 0, 2)
		if item.Title != "" {
			parts = append(parts, item.Title)
		}
		if item.Description != "" {
			parts = append(parts, item.Description)
		}
		blocks = append(blocks, strings.Join(parts, "\n"))
	}
	return Text{Content: strings.Join(blocks, "\n\n")}
}

func listToText(items List) Text {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Content)
	}
	return Text{Content: strings.Join(lines, "\n")}
}
