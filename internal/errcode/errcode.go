// Package errcode 定义任务结果消息中的数字错误码。
package errcode

import (
	"context"
	"errors"
)

// 错误码约定：
// - 0：无错误
// - 4xxx：业务可恢复/告警类错误（例如资源缺失但流程可继续）
// - 5xxx：系统错误（需要中断流程）
const (
	OK              = 0
	InvalidPayload  = 4000
	ResourceMissing = 4004
	SystemError     = 5000
	Timeout         = 5004
)

// ErrInvalidPayload marks a task whose payload can never be processed.
var ErrInvalidPayload = errors.New("invalid task payload")

// For maps a task error to its code.
func For(err error) int {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrInvalidPayload):
		return InvalidPayload
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	default:
		return SystemError
	}
}
