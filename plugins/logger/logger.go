// Package logger 调用日志插件, 以单行列格式记录每一次分发
package logger

import (
	"fmt"
	"io"
	"time"

	logger2 "github.com/nyan233/littledelegate/core/common/logger"
	"github.com/nyan233/littledelegate/core/middle/plugin"
	errorCode "github.com/nyan233/littledelegate/core/protocol/error"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
)

const (
	timeFormat = "2006-01-02 15:04:05.999"
)

type Logger struct {
	plugin.Abstract
	w         io.Writer
	dgLogger  logger2.LLogger
	dgEHandle perror.LErrors
}

func New(w io.Writer) plugin.DelegatePlugin {
	return &Logger{
		w: w,
	}
}

func (l *Logger) Setup(a0 logger2.LLogger, a1 perror.LErrors) {
	l.dgLogger = a0
	l.dgEHandle = a1
}

func (l *Logger) OnBind(ctx *plugin.Context, sig *signature.Signature, err perror.LErrorDesc) perror.LErrorDesc {
	sigText := "<no-signature>"
	if sig != nil {
		sigText = sig.String()
	}
	return l.printLog(ctx, err, "Bind", sigText)
}

func (l *Logger) AfterCall(ctx *plugin.Context, args, results []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	return l.printLog(ctx, err, "Call",
		fmt.Sprintf("args=%d results=%d", len(args), len(results)))
}

func (l *Logger) printLog(ctx *plugin.Context, err perror.LErrorDesc, phase, detail string) perror.LErrorDesc {
	if phase == "" {
		phase = "Unknown"
	}
	var status int
	if err == nil {
		status = errorCode.Success
	} else {
		status = err.Code()
	}
	live := time.Now()
	interval := live.Sub(ctx.Start)
	_, wErr := fmt.Fprintf(l.w, "[%s] [%s] [status=%d] [latency=%s] [%s] %s\n",
		phase, live.Format(timeFormat), status, interval, ctx.Name, detail)
	if wErr != nil && l.dgLogger != nil {
		l.dgLogger.Warn("LDG: logger plugin write failed: %v", wErr)
	}
	return nil
}
