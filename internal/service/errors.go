package service

import (
	"errors"
	"fmt"
)

// 业务层哨兵错误，API层据此映射HTTP状态码
var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError 输入校验失败：调用方修正后可重试，不触发任何写入
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation 判断错误是否为输入校验失败
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
