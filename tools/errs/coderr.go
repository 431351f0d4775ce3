package errs

import (
	stderr "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CodeError 对外暴露的业务错误：稳定 code + 人类可读 msg。
// Detail 仅用于日志/排障，接口层不会原样返回存储层错误。
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail 返回带附加说明的拷贝，原错误不变。
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// WrapMsg 拷贝错误并附带上下文与调用栈（github.com/pkg/errors）。
func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	return errors.WithStack(e.WithDetail(toDetail(msg, kv)))
}

// Is 支持 errors.Is(err, ErrXxx)：按 code 判等。
func (e *CodeError) Is(target error) bool {
	var ce *CodeError
	if !stderr.As(target, &ce) {
		return false
	}
	return e.Code == ce.Code
}

// Unwrap 剥掉所有包装层，返回最里层错误。
func Unwrap(err error) error {
	for err != nil {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		inner := u.Unwrap()
		if inner == nil {
			break
		}
		err = inner
	}
	return err
}

// Coded 从任意 error 中提取 *CodeError；提取不到返回 nil。
func Coded(err error) *CodeError {
	var ce *CodeError
	if stderr.As(err, &ce) {
		return ce
	}
	return nil
}

// New 构造一个内部错误（500 系），msg 后跟 k/v 对。
func New(msg string, kv ...any) *CodeError {
	return &CodeError{Code: ServerInternalCode, Msg: msg, Detail: toDetail("", kv)}
}

// Wrap 给普通 error 加调用栈。
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// WrapMsg 给普通 error 加上下文与调用栈。
func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(errors.WithMessage(err, toDetail(msg, kv)))
}

func toDetail(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(toString(kv[i]))
		sb.WriteString("=")
		if i+1 < len(kv) {
			sb.WriteString(toString(kv[i+1]))
		}
	}
	return sb.String()
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case error:
		return s.Error()
	default:
		return fmt.Sprint(v)
	}
}
