package resume

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDocument 表示文档未通过结构校验。
var ErrInvalidDocument = errors.New("invalid resume document")

// FieldError 是某个字段路径上的一条校验失败。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 列出文档中的全部校验失败。
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, fe.Field, fe.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Unwrap lets callers match ErrInvalidDocument with errors.Is.
func (ve *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func documentValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate 校验文档的结构约束：枚举值合法、模块 id 非空且唯一、
// totalPages 不小于 1，并且恰好有一个基本信息模块。
func Validate(doc Document) error {
	var fields []FieldError

	if err := documentValidator().Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate document: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Namespace(),
				Message: describeTag(fe),
			})
		}
	}

	basics := 0
	for i, sec := range doc.Sections {
		if sec.IsBasic() {
			basics++
		}
		if sec.Data != nil && sec.Data.Kind() != sec.ContentKind() {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("Document.Sections[%d].Data", i),
				Message: fmt.Sprintf("data is %s but section expects %s", sec.Data.Kind(), sec.ContentKind()),
			})
		}
	}
	if basics != 1 {
		fields = append(fields, FieldError{
			Field:   "Document.Sections",
			Message: fmt.Sprintf("expected exactly one basic section, found %d", basics),
		})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Errors: fields}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "unique":
		return fmt.Sprintf("must have unique %s values", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
