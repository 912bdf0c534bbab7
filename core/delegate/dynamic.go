package delegate

import (
	"context"
	"fmt"
	"reflect"
	"runtime"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	"github.com/nyan233/littledelegate/core/common/logger"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
	reflect2 "github.com/nyan233/littledelegate/internal/reflect"
)

// entryFunc 调度入口, 持有者的全部调用行为由安装的入口承载
// 未绑定的持有者入口为nil, nil本身就是哨兵
// probe为true时只做兼容性检查, 绝不触发真正的调用
type entryFunc func(site *signature.CallSite, probe bool) ([]interface{}, perror.LErrorDesc)

// Dynamic 签名完全擦除的持有者, 零值可用且未绑定
// 持有者是普通值, 并发的Bind/Reset与调用之间的竞争由调用方负责
type Dynamic struct {
	cfg     Config
	matcher *signature.Matcher
	slot    *target
	entry   entryFunc
}

func New(opts ...Option) *Dynamic {
	d := new(Dynamic)
	WithDefault()(&d.cfg)
	for _, opt := range opts {
		opt.apply(&d.cfg)
	}
	return d
}

func (d *Dynamic) eHandle() perror.LErrors {
	if d.cfg.ErrHandler == nil {
		return errorhandler.DefaultErrHandler
	}
	return d.cfg.ErrHandler
}

func (d *Dynamic) getLogger() logger.LLogger {
	if d.cfg.Logger == nil {
		return logger.DefaultLogger
	}
	return d.cfg.Logger
}

func (d *Dynamic) getMatcher() *signature.Matcher {
	if d.matcher == nil {
		d.matcher = signature.NewMatcher(d.cfg.Lenient)
		d.matcher.SetErrHandler(d.eHandle())
	}
	return d.matcher
}

// Bind 识别目标的存储类别并安装调度入口, 覆盖之前的全部绑定
// 支持: 顶层函数/方法值/闭包/带Invoke方法的函子对象/
// 另一个持有者/reflect.Value形式的func
func (d *Dynamic) Bind(fn interface{}) perror.LErrorDesc {
	if fn == nil {
		return d.eHandle().LWarpErrorDesc(errorhandler.ErrNotCallable,
			"bind target is untyped nil")
	}
	if w, ok := fn.(wrappedTarget); ok {
		slot := w.holderSlot()
		if slot == nil {
			return d.eHandle().LWarpErrorDesc(errorhandler.ErrDelegateNotBound,
				"wrapped holder has no target")
		}
		return d.install(slot)
	}
	if rv, ok := fn.(reflect.Value); ok {
		if rv.Kind() != reflect.Func || rv.IsNil() {
			return d.eHandle().LWarpErrorDesc(errorhandler.ErrNotCallable,
				"reflect.Value does not hold a func")
		}
		fn = rv.Interface()
	}
	val := reflect.ValueOf(fn)
	if val.Kind() == reflect.Func {
		if val.IsNil() {
			return d.eHandle().LWarpErrorDesc(errorhandler.ErrNotCallable,
				"bind target is a typed nil func")
		}
		slot, err := newTarget(classifyFuncValue(val), val, fn, nil)
		if err != nil {
			return err
		}
		return d.install(slot)
	}
	// 非func值按函子对象尝试, 约定的调用方法是Invoke
	method := val.MethodByName(InvokeMethodName)
	if !method.IsValid() {
		return d.eHandle().LWarpErrorDesc(errorhandler.ErrNotCallable,
			val.Type().String(), "no "+InvokeMethodName+" method")
	}
	slot, err := newTarget(KindFunctorObject, method, method.Interface(), fn)
	if err != nil {
		return err
	}
	return d.install(slot)
}

// BindMethod 按名字绑定接收者的方法, 接收者被保留用于BoundTo查询
func (d *Dynamic) BindMethod(recv interface{}, name string) perror.LErrorDesc {
	method, entry, err := resolveMethod(recv, name)
	if err != nil {
		return err
	}
	slot, err := newMethodTarget(method, entry, recv)
	if err != nil {
		return err
	}
	return d.install(slot)
}

func (d *Dynamic) install(slot *target) perror.LErrorDesc {
	matcher := d.getMatcher()
	call := d.call
	d.slot = slot
	d.entry = func(site *signature.CallSite, probe bool) ([]interface{}, perror.LErrorDesc) {
		plan, err := matcher.Match(slot.sig, site)
		if err != nil {
			return nil, err
		}
		if probe {
			return nil, nil
		}
		return call(slot, plan.MakeArgs(site))
	}
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug("LDG: bind %s target, signature %s, identity %#x",
			slot.kind, slot.sig, slot.sig.Identity())
	}
	return nil
}

// Invoke 分类实参 -> 兼容性匹配 -> 物化 -> 调用
// 目标首参为context.Context时自动补上context.Background()
func (d *Dynamic) Invoke(args ...interface{}) ([]interface{}, perror.LErrorDesc) {
	return d.invoke(nil, args)
}

// InvokeCtx 与Invoke相同, 但把调用方的ctx穿给目标的首参
// 目标不接受context时ctx被忽略
func (d *Dynamic) InvokeCtx(ctx context.Context, args ...interface{}) ([]interface{}, perror.LErrorDesc) {
	return d.invoke(ctx, args)
}

func (d *Dynamic) invoke(ctx context.Context, args []interface{}) ([]interface{}, perror.LErrorDesc) {
	if d.entry == nil {
		return nil, d.eHandle().LWarpErrorDesc(errorhandler.ErrDelegateNotBound,
			"invoke on unbound delegate")
	}
	args = d.prependCtx(ctx, args)
	return d.entry(signature.ClassifyArgs(args), false)
}

// InvokeSlice 变长目标的直达路径, 最后一个实参必须是预构建的
// 尾部切片, 不展开直接以CallSlice转交
func (d *Dynamic) InvokeSlice(args ...interface{}) ([]interface{}, perror.LErrorDesc) {
	if d.slot == nil {
		return nil, d.eHandle().LWarpErrorDesc(errorhandler.ErrDelegateNotBound,
			"invoke on unbound delegate")
	}
	slot := d.slot
	sig := slot.sig
	if !sig.IsVariadic() {
		return nil, d.eHandle().LWarpErrorDesc(errorhandler.ErrBadArguments,
			sig.String(), "target is not variadic")
	}
	nIn := sig.NumIn()
	if len(args) != nIn {
		return nil, d.eHandle().LWarpErrorDesc(errorhandler.ErrBadArguments,
			sig.String(), fmt.Sprintf("requires %d args with a slice tail, got %d", nIn, len(args)))
	}
	values := make([]reflect.Value, nIn)
	funcTyp := sig.Type()
	for i, v := range args {
		want := funcTyp.In(i)
		if v == nil {
			values[i] = reflect.Zero(want)
			continue
		}
		got := reflect.TypeOf(v)
		if !got.AssignableTo(want) {
			return nil, d.eHandle().LWarpErrorDesc(errorhandler.ErrBadArguments,
				sig.String(), fmt.Sprintf("index %d: %s is not assignable to %s", i, got, want))
		}
		values[i] = reflect.ValueOf(v)
	}
	return d.callSlice(slot, values)
}

// Invokable 以这组实参调用是否合法, 只探测绝不调用, 也绝不报错
func (d *Dynamic) Invokable(args ...interface{}) bool {
	if d.entry == nil {
		return false
	}
	args = d.prependCtx(nil, args)
	_, err := d.entry(signature.ClassifyArgs(args), true)
	return err == nil
}

func (d *Dynamic) prependCtx(ctx context.Context, args []interface{}) []interface{} {
	if d.slot == nil || !d.slot.sig.SupportContext() {
		return args
	}
	if ctx == nil {
		ctx = context.Background()
	}
	withCtx := make([]interface{}, 0, len(args)+1)
	withCtx = append(withCtx, ctx)
	return append(withCtx, args...)
}

func (d *Dynamic) call(slot *target, args []reflect.Value) (results []interface{}, err perror.LErrorDesc) {
	defer d.callRecover(&err)
	return packResults(slot.fn.Call(args)), nil
}

func (d *Dynamic) callSlice(slot *target, args []reflect.Value) (results []interface{}, err perror.LErrorDesc) {
	defer d.callRecover(&err)
	return packResults(slot.fn.CallSlice(args)), nil
}

func packResults(out []reflect.Value) []interface{} {
	if len(out) == 0 {
		return nil
	}
	results := make([]interface{}, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results
}

// callRecover 目标内部的panic被捕获并包装为ErrCallPanicked,
// 栈随mores一起带出
func (d *Dynamic) callRecover(err *perror.LErrorDesc) {
	e := recover()
	if e == nil {
		return
	}
	var printStr string
	switch e.(type) {
	case perror.LErrorDesc:
		printStr = e.(perror.LErrorDesc).Error()
	case error:
		printStr = e.(error).Error()
	case string:
		printStr = e.(string)
	default:
		printStr = fmt.Sprintf("%v", e)
	}
	var stack [4096]byte
	size := runtime.Stack(stack[:], false)
	stackStr := string(stack[:size])
	*err = d.eHandle().LWarpErrorDesc(errorhandler.ErrCallPanicked, printStr, stackStr)
	d.getLogger().Warn("LDG: callee panic : %s\n%s", printStr, stackStr)
}

// HasTarget 是否绑定了目标, 调度入口即是状态标记
func (d *Dynamic) HasTarget() bool {
	return d.entry != nil
}

// TargetIs 当前绑定的目标是否就是fn
// 顶层函数比较代码入口指针, 闭包额外比较数据字, 函子对象比较
// 对象指针, 方法类目标比较方法本体加捕获的接收者;
// 值接收者的方法值捕获的是拷贝, 不会比较出相等
func (d *Dynamic) TargetIs(fn interface{}) bool {
	if d.slot == nil || fn == nil {
		return false
	}
	return d.slot.targetIs(fn)
}

// BoundTo 当前目标是否绑定在这个接收者上
func (d *Dynamic) BoundTo(recv interface{}) bool {
	if d.slot == nil || recv == nil || d.slot.receiver == nil {
		return false
	}
	return reflect2.InterDataPointer(recv) == reflect2.InterDataPointer(d.slot.receiver)
}

func (d *Dynamic) Kind() TargetKind {
	if d.slot == nil {
		return KindInvalid
	}
	return d.slot.kind
}

func (d *Dynamic) Identity() signature.Identity {
	if d.slot == nil {
		return 0
	}
	return d.slot.sig.Identity()
}

func (d *Dynamic) Signature() *signature.Signature {
	if d.slot == nil {
		return nil
	}
	return d.slot.sig
}

// Assign 从另一个动态持有者拷贝目标, 槽不可变所以可以共享,
// 调度入口按本持有者的配置重建
func (d *Dynamic) Assign(src *Dynamic) perror.LErrorDesc {
	if src == nil || src.slot == nil {
		return d.eHandle().LWarpErrorDesc(errorhandler.ErrDelegateNotBound,
			"assign from unbound delegate")
	}
	return d.install(src.slot)
}

// Equal 两个持有者是否绑定着同一个目标, 都未绑定视为相等
func (d *Dynamic) Equal(other *Dynamic) bool {
	if other == nil {
		return false
	}
	if d.slot == nil || other.slot == nil {
		return d.slot == other.slot
	}
	return d.slot.codePtr == other.slot.codePtr &&
		d.slot.dataPtr == other.slot.dataPtr
}

// Reset 回到未绑定状态
func (d *Dynamic) Reset() {
	d.slot = nil
	d.entry = nil
}

func (d *Dynamic) holderSlot() *target {
	return d.slot
}
