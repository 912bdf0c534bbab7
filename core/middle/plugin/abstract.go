package plugin

import (
	"github.com/nyan233/littledelegate/core/common/logger"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
)

// Abstract 可嵌入的空实现, 插件只需要覆盖自己关心的钩子
type Abstract struct{}

func (a Abstract) Setup(logger logger.LLogger, eh perror.LErrors) {}

func (a Abstract) OnBind(ctx *Context, sig *signature.Signature, err perror.LErrorDesc) perror.LErrorDesc {
	return nil
}

func (a Abstract) BeforeCall(ctx *Context, args []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	return nil
}

func (a Abstract) AfterCall(ctx *Context, args, results []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	return nil
}
