package delegate

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
	reflect2 "github.com/nyan233/littledelegate/internal/reflect"
)

// InvokeMethodName 函子对象约定的调用方法名
const InvokeMethodName = "Invoke"

// target 存储槽, 绑定时整体构造, 安装之后不再修改
// 重绑定安装一个全新的槽, 旧槽交给GC, 所以并发读取旧入口是安全的
type target struct {
	kind TargetKind
	// 被调用的func值, 函子对象存的是它的Invoke方法值
	fn reflect.Value
	// 绑定时的原始值, 固定签名持有者用它还原F
	raw interface{}
	// 绑定方法/函子对象的接收者, 其余类别为nil
	receiver interface{}
	// 代码入口指针与eface数据字, TargetIs按它们做身份比较
	codePtr uintptr
	dataPtr unsafe.Pointer
	sig     *signature.Signature
}

func newTarget(kind TargetKind, fn reflect.Value, raw, receiver interface{}) (*target, perror.LErrorDesc) {
	sig, err := signature.FromType(fn.Type())
	if err != nil {
		return nil, err
	}
	return &target{
		kind:     kind,
		fn:       fn,
		raw:      raw,
		receiver: receiver,
		codePtr:  fn.Pointer(),
		dataPtr:  reflect2.InterDataPointer(raw),
		sig:      sig,
	}, nil
}

// classifyFuncValue 根据func值的符号名区分顶层函数/方法值/闭包
// 方法值的包装器符号以-fm结尾, 闭包的符号携带.funcN段
func classifyFuncValue(val reflect.Value) TargetKind {
	name := reflect2.FuncName(val.Pointer())
	switch {
	case name == "":
		return KindFreeFunc
	case strings.HasSuffix(name, "-fm"):
		return KindMethodValue
	case isClosureName(name):
		return KindClosure
	default:
		return KindFreeFunc
	}
}

// isClosureName 符号名中出现".funcN"段即为闭包, N为数字
// 嵌套闭包形如pkg.F.func1.2, 判断首个此类段就足够了
func isClosureName(name string) bool {
	for idx := strings.Index(name, ".func"); idx >= 0; {
		rest := name[idx+len(".func"):]
		if len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
			return true
		}
		next := strings.Index(rest, ".func")
		if next < 0 {
			return false
		}
		idx = idx + len(".func") + next
	}
	return false
}

// newMethodTarget 绑定方法的槽, 身份字段使用方法本体的入口
// 和接收者的eface数据字, 而不是reflect方法值的共享跳板
func newMethodTarget(method reflect.Value, entry uintptr, recv interface{}) (*target, perror.LErrorDesc) {
	slot, err := newTarget(KindBoundMethod, method, method.Interface(), recv)
	if err != nil {
		return nil, err
	}
	slot.codePtr = entry
	slot.dataPtr = reflect2.InterDataPointer(recv)
	return slot, nil
}

// targetIs 存储目标与fn的身份比较
// 顶层函数比较代码入口指针, 闭包额外比较数据字, 函子对象比较对象指针,
// 方法类目标按符号名对齐包装器之后再比较捕获的接收者字
func (t *target) targetIs(fn interface{}) bool {
	if fn == nil {
		return false
	}
	if reflect.ValueOf(fn).Kind() != reflect.Func {
		return t.kind == KindFunctorObject &&
			reflect2.InterDataPointer(fn) == reflect2.InterDataPointer(t.receiver)
	}
	pc := reflect2.FuncPointer(fn)
	if pc == 0 {
		return false
	}
	switch t.kind {
	case KindBoundMethod:
		return t.boundMethodIs(pc, fn)
	case KindMethodValue:
		return pc == t.codePtr &&
			reflect2.MethodValueReceiver(fn) == reflect2.MethodValueReceiver(t.raw)
	case KindClosure:
		return pc == t.codePtr &&
			reflect2.InterDataPointer(fn) == t.dataPtr
	default:
		return pc == t.codePtr
	}
}

// boundMethodIs 语言侧方法值的符号形如pkg.(*T).M-fm, 代码指针
// 与存储的方法本体入口不可直接比较, 去掉包装器后缀对齐符号名
// 之后再比较接收者; 值接收者的方法值捕获的是拷贝, 不会比较出相等
func (t *target) boundMethodIs(pc uintptr, fn interface{}) bool {
	name := reflect2.FuncName(pc)
	if !strings.HasSuffix(name, "-fm") {
		return false
	}
	if strings.TrimSuffix(name, "-fm") != reflect2.FuncName(t.codePtr) {
		return false
	}
	if reflect.ValueOf(t.receiver).Kind() != reflect.Ptr {
		return false
	}
	return reflect2.MethodValueReceiver(fn) == t.dataPtr
}

// resolveMethod 按名字解析接收者的方法值, 同时给出方法本体的入口指针
// 方法值自身的Pointer()是reflect共享的跳板, 不能用于身份比较
func resolveMethod(recv interface{}, name string) (reflect.Value, uintptr, perror.LErrorDesc) {
	if recv == nil {
		return reflect.Value{}, 0, perror.LWarpStdError(errorhandler.ErrNotCallable,
			"bind receiver is untyped nil")
	}
	val := reflect.ValueOf(recv)
	method := val.MethodByName(name)
	if !method.IsValid() {
		return reflect.Value{}, 0, perror.LWarpStdError(errorhandler.ErrMethodNotFound,
			val.Type().String(), name)
	}
	desc, _ := val.Type().MethodByName(name)
	return method, desc.Func.Pointer(), nil
}

// wrappedTarget 两种持有者都实现的内部接口, Bind用它解开
// 被包装的持有者而不产生双重间接
type wrappedTarget interface {
	holderSlot() *target
}
