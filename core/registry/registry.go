// Package registry 以名字为键的委托表, 即进程内的方法分发层
// 注册遵循Source.Method的命名格式, 每个过程背后是一个Dynamic持有者
package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	"github.com/nyan233/littledelegate/core/common/logger"
	"github.com/nyan233/littledelegate/core/container"
	"github.com/nyan233/littledelegate/core/delegate"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/internal/pool"
)

type Registry struct {
	cfg      *Config
	logger   logger.LLogger
	eHandle  perror.LErrors
	pManager *pluginManager
	taskPool pool.TaskPool[string]
	closed   uint32
	// source名 -> 源描述
	sources container.MutexMap[string, *Source]
	// Source.Method全名 -> 持有者, 调用路径只读这张表
	// 写入少读取多, RCU快照让Invoke不与注册互斥
	elems *container.RCUMap[string, *delegate.Dynamic]
}

func New(opts ...Option) *Registry {
	r := new(Registry)
	cfg := &Config{}
	WithDefaultRegistry()(cfg)
	for _, opt := range opts {
		opt.apply(cfg)
	}
	r.cfg = cfg
	if cfg.Logger != nil {
		r.logger = cfg.Logger
	} else {
		r.logger = logger.DefaultLogger
	}
	if cfg.ErrHandler != nil {
		r.eHandle = cfg.ErrHandler
	} else {
		r.eHandle = errorhandler.DefaultErrHandler
	}
	r.pManager = newPluginManager(cfg.Plugins)
	r.pManager.setupAll(r.logger, r.eHandle)
	r.taskPool = cfg.ExecPoolBuilder.Builder(
		cfg.PoolBufferSize, cfg.PoolMinSize, cfg.PoolMaxSize, r.poolRecover)
	r.elems = container.NewRCUMap[string, *delegate.Dynamic]()
	return r
}

func (r *Registry) poolRecover(poolId int, err interface{}) {
	r.logger.Error("LDG: async worker(%d) panic: %v", poolId, err)
}

// Register 绑定一个可调用目标并以name发布, name必须是Source.Method格式
func (r *Registry) Register(name string, fn interface{}) perror.LErrorDesc {
	source, method, lErr := r.splitName(name)
	if lErr != nil {
		return lErr
	}
	if atomic.LoadUint32(&r.closed) == 1 {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrRegistryClosed, name)
	}
	holder := r.newHolder()
	bindErr := holder.Bind(fn)
	lErr = r.firePluginOnBind(name, holder, bindErr)
	if lErr != nil {
		return lErr
	}
	src, _ := r.sources.LoadOrStore(source, new(Source))
	if !src.addProcess(method, holder) {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrSourceAlreadyExists, name)
	}
	r.elems.Store(name, holder)
	return nil
}

// RegisterClass 遍历接收者的导出方法集并逐个注册为source.Method
// source为空时使用接收者的类型名, exclude中的方法名被跳过
func (r *Registry) RegisterClass(source string, recv interface{}, exclude map[string]bool) perror.LErrorDesc {
	if recv == nil {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrNotCallable,
			"register receiver is nil")
	}
	if atomic.LoadUint32(&r.closed) == 1 {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrRegistryClosed, source)
	}
	value := reflect.ValueOf(recv)
	name := reflect.Indirect(value).Type().Name()
	if name == "" && source == "" {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrBadRegisterName,
			"receiver type name is not defined and no source name given")
	}
	if source == "" {
		source = name
	}
	if value.NumMethod() == 0 {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrNotCallable,
			"no bind receiver method", value.Type().String())
	}
	if _, ok := r.sources.LoadOk(source); ok {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrSourceAlreadyExists, source)
	}
	src := &Source{InstanceType: value.Type()}
	instanceTyp := value.Type()
	kvs := make([]container.RCUMapElement[string, *delegate.Dynamic], 0, value.NumMethod())
	for i := 0; i < instanceTyp.NumMethod(); i++ {
		method := instanceTyp.Method(i)
		if !method.IsExported() || exclude[method.Name] {
			continue
		}
		fullName := fmt.Sprintf("%s.%s", source, method.Name)
		holder := r.newHolder()
		bindErr := holder.BindMethod(recv, method.Name)
		if lErr := r.firePluginOnBind(fullName, holder, bindErr); lErr != nil {
			return lErr
		}
		src.addProcess(method.Name, holder)
		kvs = append(kvs, container.RCUMapElement[string, *delegate.Dynamic]{
			Key:   fullName,
			Value: holder,
		})
	}
	r.sources.Store(source, src)
	r.elems.StoreMulti(kvs)
	return nil
}

func (r *Registry) newHolder() *delegate.Dynamic {
	return delegate.New(
		delegate.WithLogger(r.logger),
		delegate.WithErrHandler(r.eHandle),
		delegate.WithLenient(r.cfg.Lenient),
	)
}

func (r *Registry) firePluginOnBind(name string, holder *delegate.Dynamic, bindErr perror.LErrorDesc) perror.LErrorDesc {
	if r.pManager.Size() > 0 {
		ctx := r.pManager.GetContext(r.logger, r.eHandle, name)
		defer r.pManager.FreeContext(ctx)
		if pErr := r.pManager.OnBind(ctx, holder.Signature(), bindErr); pErr != nil {
			return r.eHandle.LWarpErrorDesc(errorhandler.ErrPlugin, pErr.Error())
		}
	}
	if bindErr != nil {
		return r.eHandle.LWarpErrorDesc(bindErr, "register bind failed", name)
	}
	return nil
}

func (r *Registry) splitName(name string) (source, method string, err perror.LErrorDesc) {
	dot := strings.Index(name, ".")
	if dot <= 0 || dot == len(name)-1 || strings.Count(name, ".") != 1 {
		return "", "", r.eHandle.LWarpErrorDesc(errorhandler.ErrBadRegisterName, name)
	}
	return name[:dot], name[dot+1:], nil
}

// Lookup 取出name背后的持有者, 调用方可以直接拿它做Invoke
func (r *Registry) Lookup(name string) (*delegate.Dynamic, bool) {
	return r.elems.LoadOk(name)
}

// Deregister 撤销name的注册, 已经拿到持有者的调用方不受影响
func (r *Registry) Deregister(name string) {
	source, method, err := r.splitName(name)
	if err != nil {
		return
	}
	if src, ok := r.sources.LoadOk(source); ok {
		if src.deleteProcess(method) == 0 {
			r.sources.Delete(source)
		}
	}
	r.elems.Delete(name)
}

func (r *Registry) Sources() []string {
	names := make([]string, 0, r.sources.Len())
	r.sources.Range(func(key string, v *Source) bool {
		names = append(names, key)
		return true
	})
	return names
}

func (r *Registry) Methods(source string) ([]string, perror.LErrorDesc) {
	src, ok := r.sources.LoadOk(source)
	if !ok {
		return nil, r.eHandle.LWarpErrorDesc(errorhandler.ErrMethodNotFound, source)
	}
	return src.methodNames(), nil
}

// MethodTable 服务源的自省视图, 即按签名重塑的反射服务
func (r *Registry) MethodTable(source string) (*MethodTableDesc, perror.LErrorDesc) {
	src, ok := r.sources.LoadOk(source)
	if !ok {
		return nil, r.eHandle.LWarpErrorDesc(errorhandler.ErrMethodNotFound, source)
	}
	set := src.snapshot()
	mt := &MethodTableDesc{
		SourceName: source,
		Methods:    make([]MethodDesc, 0, len(set)),
	}
	for name, holder := range set {
		sig := holder.Signature()
		mt.Methods = append(mt.Methods, MethodDesc{
			Name:          name,
			SignatureText: sig.String(),
			Identity:      sig.Identity(),
			Kind:          holder.Kind().String(),
			Variadic:      sig.IsVariadic(),
		})
	}
	return mt, nil
}

// Invoke 查表并同步调用, 插件环绕每一次调用
func (r *Registry) Invoke(name string, args ...interface{}) ([]interface{}, perror.LErrorDesc) {
	return r.invoke(nil, name, args)
}

func (r *Registry) InvokeCtx(ctx context.Context, name string, args ...interface{}) ([]interface{}, perror.LErrorDesc) {
	return r.invoke(ctx, name, args)
}

func (r *Registry) invoke(ctx context.Context, name string, args []interface{}) ([]interface{}, perror.LErrorDesc) {
	if atomic.LoadUint32(&r.closed) == 1 {
		return nil, r.eHandle.LWarpErrorDesc(errorhandler.ErrRegistryClosed, name)
	}
	holder, ok := r.elems.LoadOk(name)
	if !ok {
		return nil, r.eHandle.LWarpErrorDesc(errorhandler.ErrMethodNotFound, name)
	}
	if r.pManager.Size() == 0 {
		if ctx != nil {
			return holder.InvokeCtx(ctx, args...)
		}
		return holder.Invoke(args...)
	}
	pCtx := r.pManager.GetContext(r.logger, r.eHandle, name)
	defer r.pManager.FreeContext(pCtx)
	if pErr := r.pManager.BeforeCall(pCtx, args, nil); pErr != nil {
		return nil, r.eHandle.LWarpErrorDesc(errorhandler.ErrPlugin, pErr.Error())
	}
	var (
		results []interface{}
		callErr perror.LErrorDesc
	)
	if ctx != nil {
		results, callErr = holder.InvokeCtx(ctx, args...)
	} else {
		results, callErr = holder.Invoke(args...)
	}
	if pErr := r.pManager.AfterCall(pCtx, args, results, callErr); pErr != nil {
		return results, r.eHandle.LWarpErrorDesc(errorhandler.ErrPlugin, pErr.Error())
	}
	return results, callErr
}

// AsyncInvoke 把调用提交给任务池, callback在某个池worker上执行
// 提交失败立即返回错误, 执行中的错误通过callback交付
func (r *Registry) AsyncInvoke(name string, args []interface{}, callback func([]interface{}, error)) perror.LErrorDesc {
	if callback == nil {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrNotCallable,
			"async callback is nil")
	}
	if atomic.LoadUint32(&r.closed) == 1 {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrRegistryClosed, name)
	}
	pushErr := r.taskPool.Push(name, func() {
		results, err := r.invoke(nil, name, args)
		if err != nil {
			callback(results, err)
			return
		}
		callback(results, nil)
	})
	if pushErr != nil {
		return r.eHandle.LWarpErrorDesc(errorhandler.ErrRegistryClosed, pushErr.Error())
	}
	return nil
}

// Stop 停止注册中心并等待任务池中的调用收尾
func (r *Registry) Stop() error {
	if !atomic.CompareAndSwapUint32(&r.closed, 0, 1) {
		return errorhandler.ErrRegistryClosed
	}
	return r.taskPool.Stop()
}
