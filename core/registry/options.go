package registry

import (
	"runtime"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	logger2 "github.com/nyan233/littledelegate/core/common/logger"
	"github.com/nyan233/littledelegate/core/middle/plugin"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/internal/pool"
)

type Option func(config *Config)

func (opt Option) apply(config *Config) {
	opt(config)
}

func DirectConfig(uCfg Config) Option {
	return func(config *Config) {
		*config = uCfg
	}
}

func WithDefaultRegistry() Option {
	return func(config *Config) {
		WithLogger(logger2.DefaultLogger)(config)
		WithNoStackTrace()(config)
		WithExecPoolArgument(int32(runtime.NumCPU()*8), pool.MaxTaskPoolSize, 2048)(config)
		WithTaskPool()(config)
	}
}

func WithLogger(logger logger2.LLogger) Option {
	return func(config *Config) {
		config.Logger = logger
	}
}

func WithOpenLogger(ok bool) Option {
	return func(config *Config) {
		if !ok {
			config.Logger = logger2.NilLogger{}
		}
	}
}

func WithPlugin(plg plugin.DelegatePlugin) Option {
	return func(config *Config) {
		config.Plugins = append(config.Plugins, plg)
	}
}

func WithPlugins(plgs ...plugin.DelegatePlugin) Option {
	return func(config *Config) {
		config.Plugins = append(config.Plugins, plgs...)
	}
}

func WithErrHandler(eh perror.LErrors) Option {
	return func(config *Config) {
		config.ErrHandler = eh
	}
}

func WithStackTraceErrHandler() Option {
	return func(config *Config) {
		config.ErrHandler = errorhandler.NewStackTrace()
	}
}

func WithNoStackTrace() Option {
	return func(config *Config) {
		config.ErrHandler = errorhandler.DefaultErrHandler
	}
}

func WithLenient(ok bool) Option {
	return func(config *Config) {
		config.Lenient = ok
	}
}

func WithExecPoolArgument(minSize, maxSize, bufSize int32) Option {
	return func(config *Config) {
		config.PoolMinSize = minSize
		config.PoolMaxSize = maxSize
		config.PoolBufferSize = bufSize
	}
}

// WithTaskPool 默认的动态任务池
func WithTaskPool() Option {
	return func(config *Config) {
		config.ExecPoolBuilder = pool.NewDynamicPoolBuilder[string]()
	}
}

func WithExecPoolBuilder(builder pool.TaskPoolBuilder[string]) Option {
	return func(config *Config) {
		config.ExecPoolBuilder = builder
	}
}
