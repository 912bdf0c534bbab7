package registry

import (
	"github.com/nyan233/littledelegate/core/common/logger"
	"github.com/nyan233/littledelegate/core/middle/plugin"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/internal/pool"
)

type Config struct {
	Logger     logger.LLogger
	ErrHandler perror.LErrors
	// 环绕注册/调用生命周期的插件
	Plugins []plugin.DelegatePlugin
	// 注册的持有者是否开启宽松匹配
	Lenient bool
	// AsyncInvoke使用的任务池参数
	PoolMinSize     int32
	PoolMaxSize     int32
	PoolBufferSize  int32
	ExecPoolBuilder pool.TaskPoolBuilder[string]
}
