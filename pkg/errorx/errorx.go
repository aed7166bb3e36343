package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 错误码同时作为应答报文中的 errno 字段返回给客户端
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 存在底层错误时返回 "消息: 底层错误"，否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeDBError, "创建用户")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "用户 %d 不存在", userID)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，nil 返回 CodeSuccess，非 CodeError 返回 CodeServerBusy
func GetCode(err error) int {
	if err == nil {
		return CodeSuccess
	}
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// GetMsg 提取面向客户端的错误消息，不暴露底层错误细节
func GetMsg(err error) string {
	if err == nil {
		return ""
	}
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	return ErrServerBusy.Msg
}

// 业务状态码，与应答报文的 errno 一一对应
const (
	CodeSuccess        = 0 // 成功
	CodeFailed         = 1 // 请求失败：账号或密码错误、注册失败
	CodeDuplicateLogin = 2 // 账号已在线
	CodeInvalidParam   = 3 // 请求参数错误
	CodeServerBusy     = 4 // 服务繁忙
	CodeNotFound       = 5 // 资源不存在
	CodeDBError        = 6 // 数据库错误
	CodeRelayError     = 7 // 跨实例转发错误
)

// 预定义常用错误实例，既可直接返回，也可用于 errors.Is 比较
var (
	ErrServerBusy      = New(CodeServerBusy, "服务繁忙")
	ErrInvalidAccount  = New(CodeFailed, "id or password is invalid!")
	ErrDuplicateLogin  = New(CodeDuplicateLogin, "this account is using, input another!")
	ErrNoSubscriber    = New(CodeRelayError, "relay publish reached no subscriber")
	ErrRelayClosed     = New(CodeRelayError, "relay closed")
	ErrSendBufferFull  = New(CodeServerBusy, "connection send buffer full")
	ErrConnClosed      = New(CodeServerBusy, "connection closed")
	ErrRegisterFailure = New(CodeFailed, "register failed")
)

// IsNotFound 检查错误是否为"未找到"类型
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}
