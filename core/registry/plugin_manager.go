package registry

import (
	"sync"
	"time"

	"github.com/nyan233/littledelegate/core/common/logger"
	"github.com/nyan233/littledelegate/core/middle/plugin"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
)

// pluginManager 串行遍历全部插件, 第一个返回的错误即为结果
type pluginManager struct {
	ctxPool sync.Pool
	plugins []plugin.DelegatePlugin
}

func newPluginManager(plugins []plugin.DelegatePlugin) *pluginManager {
	return &pluginManager{
		ctxPool: sync.Pool{
			New: func() interface{} {
				return plugin.Background()
			},
		},
		plugins: plugins,
	}
}

func (m *pluginManager) setupAll(l logger.LLogger, eh perror.LErrors) {
	for _, v := range m.plugins {
		v.Setup(l, eh)
	}
}

func (m *pluginManager) AddPlugin(p plugin.DelegatePlugin) {
	m.plugins = append(m.plugins, p)
}

func (m *pluginManager) Size() int {
	return len(m.plugins)
}

func (m *pluginManager) GetContext(l logger.LLogger, eh perror.LErrors, name string) *plugin.Context {
	ctx := m.ctxPool.Get().(*plugin.Context)
	ctx.Logger = l
	ctx.EHandler = eh
	ctx.Name = name
	ctx.Start = time.Now()
	return ctx
}

func (m *pluginManager) FreeContext(ctx *plugin.Context) {
	if ctx == nil {
		return
	}
	ctx.Reset()
	m.ctxPool.Put(ctx)
}

func (m *pluginManager) OnBind(ctx *plugin.Context, sig *signature.Signature, err perror.LErrorDesc) perror.LErrorDesc {
	for _, p := range m.plugins {
		if err := p.OnBind(ctx, sig, err); err != nil {
			return err
		}
	}
	return nil
}

func (m *pluginManager) BeforeCall(ctx *plugin.Context, args []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	for _, p := range m.plugins {
		if err := p.BeforeCall(ctx, args, err); err != nil {
			return err
		}
	}
	return nil
}

func (m *pluginManager) AfterCall(ctx *plugin.Context, args, results []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	for _, p := range m.plugins {
		if err := p.AfterCall(ctx, args, results, err); err != nil {
			return err
		}
	}
	return nil
}
