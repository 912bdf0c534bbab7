package errorhandler

import (
	"encoding/json"
	"fmt"
	error2 "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/utils/convert"
	"runtime"
	"strings"
)

// DefaultErrHandler 不带栈追踪的默认错误处理器
var DefaultErrHandler = New()

type marshalStack struct {
	Stack stack `json:"stack"`
}

type stack []string

func (s stack) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i := len(s) - 1; i >= 0; i-- {
		sb.WriteByte('"')
		sb.WriteString(s[i])
		sb.WriteByte('"')
		if i != 0 {
			sb.WriteByte(',')
		}
	}
	sb.WriteByte(']')
	return convert.StringToBytes(sb.String()), nil
}

type lDGStackTraceError struct {
	DCode    int           `json:"code"`
	DMessage string        `json:"message"`
	DMores   []interface{} `json:"mores"`
	DStack   stack         `json:"stack"`
}

func error2TraceError(err error2.LErrorDesc) *lDGStackTraceError {
	return &lDGStackTraceError{
		DCode:    err.Code(),
		DMessage: err.Message(),
		DMores:   append(err.Mores()),
		DStack:   make([]string, 0, 8),
	}
}

func warpStackTraceError(err *lDGStackTraceError, mores ...interface{}) *lDGStackTraceError {
	return &lDGStackTraceError{
		DCode:    err.DCode,
		DMessage: err.DMessage,
		DMores:   append(err.DMores, mores...),
		DStack:   err.DStack,
	}
}

func (l *lDGStackTraceError) Code() int {
	return l.DCode
}

func (l *lDGStackTraceError) Message() string {
	return l.DMessage
}

func (l *lDGStackTraceError) AppendMore(more interface{}) {
	l.DMores = append(l.DMores, more)
}

func (l *lDGStackTraceError) Mores() []interface{} {
	return l.DMores
}

func (l *lDGStackTraceError) MarshalMores() ([]byte, error) {
	mores := l.Mores()
	mores = append(mores, &marshalStack{Stack: l.DStack})
	return json.Marshal(mores)
}

func (l *lDGStackTraceError) UnmarshalMores(bytes []byte) error {
	return json.Unmarshal(bytes, &l.DMores)
}

func (l *lDGStackTraceError) Error() string {
	type PrintError struct {
		DCode    int           `json:"code"`
		DMessage string        `json:"message"`
		DMores   []interface{} `json:"mores"`
	}
	mores := l.Mores()
	mores = append(mores, &marshalStack{Stack: l.DStack})
	bytes, err := json.Marshal(&PrintError{
		DCode:    l.Code(),
		DMessage: l.Message(),
		DMores:   mores,
	})
	if err != nil {
		panic("json.Marshal failed : " + err.Error())
	}
	return convert.BytesToString(bytes)
}

type JsonErrorHandler struct {
	openStackTrace bool
}

func NewStackTrace() error2.LErrors {
	return &JsonErrorHandler{
		openStackTrace: true,
	}
}

func New() error2.LErrors {
	return new(JsonErrorHandler)
}

func (j JsonErrorHandler) LNewErrorDesc(code int, message string, mores ...interface{}) error2.LErrorDesc {
	if !j.openStackTrace {
		return error2.LNewStdError(code, message, mores...)
	}
	err := error2TraceError(error2.LNewStdError(code, message, mores...))
	// runtime.Caller即使有重复的代码也不能抽到公共函数中, skip参数对性能的影响很大
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		err.DStack = append(err.DStack, "???.go:???")
	} else {
		err.DStack = append(err.DStack, fmt.Sprintf("%s:%d", file, line))
	}
	return err
}

func (j JsonErrorHandler) LWarpErrorDesc(desc error2.LErrorDesc, mores ...interface{}) error2.LErrorDesc {
	if !j.openStackTrace {
		return error2.LWarpStdError(desc, mores...)
	}
	err, _ := desc.(*lDGStackTraceError)
	if err == nil {
		err = error2TraceError(error2.LWarpStdError(desc, mores...))
	} else {
		err = warpStackTraceError(err, mores...)
	}
	// runtime.Caller即使有重复的代码也不能抽到公共函数中, skip参数对性能的影响很大
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		err.DStack = append(err.DStack, "???.go:???")
	} else {
		err.DStack = append(err.DStack, fmt.Sprintf("%s:%d", file, line))
	}
	return err
}
