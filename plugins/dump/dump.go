// Package dump 调试插件, 在实参不兼容时完整倾倒调用现场
package dump

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	logger2 "github.com/nyan233/littledelegate/core/common/logger"
	"github.com/nyan233/littledelegate/core/middle/plugin"
	errorCode "github.com/nyan233/littledelegate/core/protocol/error"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
)

type Dump struct {
	plugin.Abstract
	w         io.Writer
	dgLogger  logger2.LLogger
	dgEHandle perror.LErrors
	// 默认只倾倒BadArguments的现场, 全量模式倾倒每一次调用
	verbose bool
}

func New(w io.Writer) plugin.DelegatePlugin {
	return &Dump{w: w}
}

func NewVerbose(w io.Writer) plugin.DelegatePlugin {
	return &Dump{w: w, verbose: true}
}

func (d *Dump) Setup(a0 logger2.LLogger, a1 perror.LErrors) {
	d.dgLogger = a0
	d.dgEHandle = a1
}

func (d *Dump) AfterCall(ctx *plugin.Context, args, results []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	if !d.verbose && (err == nil || err.Code() != errorCode.BadArguments) {
		return nil
	}
	_, wErr := fmt.Fprintf(d.w, "--- %s ---\nargs: %sresults: %s",
		ctx.Name, spew.Sdump(args), spew.Sdump(results))
	if wErr == nil && err != nil {
		_, wErr = fmt.Fprintf(d.w, "error: %s\n", err.Error())
	}
	if wErr != nil && d.dgLogger != nil {
		d.dgLogger.Warn("LDG: dump plugin write failed: %v", wErr)
	}
	return nil
}
