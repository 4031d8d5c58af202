package server

import (
	"fmt"
	"net/http"

	"github.com/lmxdawn/chainconsole/engine"
)

// 信封中的错误分类 分发器的分类直接透传
const (
	CodeUnknownAction    = engine.CodeUnknownAction
	CodeInvalidArgument  = engine.CodeInvalidArgument
	CodeExternalCall     = engine.CodeExternalCall
	CodeValidation       = "ValidationError"
	CodeMethodNotAllowed = "MethodNotAllowed"
	CodeAdapterFault     = "AdapterFault"
)

// nolint: golint
var (
	InternalServerError = &Errno{Code: CodeAdapterFault, Status: http.StatusInternalServerError, Message: "Internal server error"}
	ErrMethodNotAllowed = &Errno{Code: CodeMethodNotAllowed, Status: http.StatusMethodNotAllowed, Message: "Method Not Allowed"}
	ErrParam            = &Errno{Code: CodeValidation, Status: http.StatusBadRequest, Message: "参数有误"}
)

// Errno ...
type Errno struct {
	Code    string
	Status  int
	Message string
}

func (err Errno) Error() string {
	return err.Message
}

// Err represents an error
type Err struct {
	Errno *Errno
	Err   error
}

func (err *Err) Error() string {
	return fmt.Sprintf("Err - code: %s, message: %s, error: %s", err.Errno.Code, err.Errno.Message, err.Err)
}

// WithErr 保留分类 使用具体错误信息
func WithErr(errno *Errno, err error) *Err {
	return &Err{Errno: errno, Err: err}
}

// DecodeErr 返回 http 状态码 分类 和信息
func DecodeErr(err error) (int, string, string) {
	if err == nil {
		return http.StatusOK, "", ""
	}

	switch typed := err.(type) {
	case *Err:
		msg := typed.Errno.Message
		if typed.Err != nil {
			msg = typed.Err.Error()
		}
		return typed.Errno.Status, typed.Errno.Code, msg
	case *Errno:
		return typed.Status, typed.Code, typed.Message
	default:
	}

	return InternalServerError.Status, InternalServerError.Code, err.Error()
}
