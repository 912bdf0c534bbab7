package plugin

import (
	"time"

	"github.com/nyan233/littledelegate/core/common/logger"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
)

// Context 一次注册/调用生命周期内插件之间共享的上下文
// 指针类型的数据均不能被多个Goroutine安全地使用,
// 如果你要这么做的话, 那么请将其拷贝一份
type Context struct {
	Logger   logger.LLogger
	EHandler perror.LErrors
	// Source.Method形式的完整过程名
	Name  string
	Start time.Time
	kvs   map[interface{}]interface{}
}

func Background() *Context {
	return &Context{
		kvs: make(map[interface{}]interface{}, 4),
	}
}

// SetValue 插件应当使用自己的私有类型作为key, 避免相互踩踏
func (c *Context) SetValue(key, value interface{}) {
	if c.kvs == nil {
		c.kvs = make(map[interface{}]interface{}, 4)
	}
	c.kvs[key] = value
}

func (c *Context) Value(key interface{}) interface{} {
	if c.kvs == nil {
		return nil
	}
	return c.kvs[key]
}

// Reset 放回池中之前清空, kv的底层map被保留复用
func (c *Context) Reset() {
	c.Logger = nil
	c.EHandler = nil
	c.Name = ""
	c.Start = time.Time{}
	for k := range c.kvs {
		delete(c.kvs, k)
	}
}

// DelegatePlugin 环绕注册与调用生命周期的钩子
// 任何钩子返回非nil错误都会中断本次操作并把错误交还调用方
type DelegatePlugin interface {
	// Setup 在插件被安装到注册中心时调用一次
	Setup(logger logger.LLogger, eh perror.LErrors)
	// OnBind 过程注册(绑定)完成之后调用, err为绑定的结果
	OnBind(ctx *Context, sig *signature.Signature, err perror.LErrorDesc) perror.LErrorDesc
	// BeforeCall 兼容性检查之前调用, args是原始实参
	BeforeCall(ctx *Context, args []interface{}, err perror.LErrorDesc) perror.LErrorDesc
	// AfterCall 目标返回之后调用, err为调用的结果
	AfterCall(ctx *Context, args, results []interface{}, err perror.LErrorDesc) perror.LErrorDesc
}
