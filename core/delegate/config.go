package delegate

import (
	"github.com/nyan233/littledelegate/core/common/errorhandler"
	"github.com/nyan233/littledelegate/core/common/logger"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
)

type Config struct {
	Logger logger.LLogger
	// 诊断走哪个错误处理器, 默认不带栈追踪
	ErrHandler perror.LErrors
	// 宽松匹配: 值形参额外接受无损可转换的实参
	Lenient bool
}

type Option func(config *Config)

func (opt Option) apply(config *Config) {
	opt(config)
}

func DirectConfig(uCfg Config) Option {
	return func(config *Config) {
		*config = uCfg
	}
}

func WithDefault() Option {
	return func(config *Config) {
		WithLogger(logger.DefaultLogger)(config)
		WithErrHandler(errorhandler.DefaultErrHandler)(config)
		WithLenient(false)(config)
	}
}

func WithLogger(l logger.LLogger) Option {
	return func(config *Config) {
		config.Logger = l
	}
}

func WithOpenLogger(ok bool) Option {
	return func(config *Config) {
		if !ok {
			config.Logger = logger.NilLogger{}
		}
	}
}

func WithErrHandler(eh perror.LErrors) Option {
	return func(config *Config) {
		config.ErrHandler = eh
	}
}

func WithLenient(ok bool) Option {
	return func(config *Config) {
		config.Lenient = ok
	}
}

func WithStackTrace() Option {
	return func(config *Config) {
		config.ErrHandler = errorhandler.NewStackTrace()
	}
}
