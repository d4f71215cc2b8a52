package resume

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDocument 表示内容无法解析为文档。
var ErrMalformedDocument = errors.New("malformed resume document")

// Encode 把文档序列化为持久化格式。
func Encode(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode 解析持久化的文档，缺少 pageSettings 时按单页处理。
func Decode(data []byte) (Document, error) {
	doc := Document{PageSettings: DefaultPageSettings()}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return doc, nil
}

// PrepareExport 返回清空头像后的文档副本，导出文件中不带内联图片。
func PrepareExport(doc Document) Document {
	out := doc.Clone()
	for i, sec := range out.Sections {
		if !sec.IsBasic() {
			continue
		}
		if info, ok := sec.Data.(BasicInfo); ok {
			info.Avatar = ""
			out.Sections[i].Data = info
		}
	}
	return out
}

// Export 序列化用于下载的文档。
func Export(doc Document) ([]byte, error) {
	return Encode(PrepareExport(doc))
}

// Import 解析导出文件并校验结构，返回的文档用于整体替换当前文档。
func Import(data []byte) (Document, error) {
	doc, err := Decode(data)
	if err != nil {
		return Document{}, err
	}
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}
