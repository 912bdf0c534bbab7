package delegate

import (
	"reflect"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
)

// Delegate 签名在编译期固定的持有者, F必须是func类型
// 调用点的实参类型由语言自己的编译检查保证, 运行时不做匹配
// 零值可用且未绑定
type Delegate[F any] struct {
	slot *target
	// 未绑定时Target()返回的哨兵, 首次使用时构造
	sentinel   F
	sentinelOK bool
}

// funcType F不是func类型属于编程错误, 直接panic而不是返回错误
func (d *Delegate[F]) funcType() reflect.Type {
	t := reflect.TypeOf((*F)(nil)).Elem()
	if t.Kind() != reflect.Func {
		panic(perror.LWarpStdError(errorhandler.ErrNotCallable,
			"Delegate type parameter must be a func type", t.String()))
	}
	return t
}

// Bind 绑定总是签名安全的, F已经约束了fn的类型
// 传入typed nil等价于Reset
func (d *Delegate[F]) Bind(fn F) {
	d.funcType()
	val := reflect.ValueOf(fn)
	if val.IsNil() {
		d.Reset()
		return
	}
	slot, err := newTarget(classifyFuncValue(val), val, fn, nil)
	if err != nil {
		panic(err)
	}
	d.slot = slot
}

// BindMethod 按名字绑定方法, 方法签名必须与F结构一致
func (d *Delegate[F]) BindMethod(recv interface{}, name string) perror.LErrorDesc {
	method, entry, err := resolveMethod(recv, name)
	if err != nil {
		return err
	}
	if method.Type() != d.funcType() {
		return perror.LWarpStdError(errorhandler.ErrSignatureMismatch,
			signature.Render(d.funcType()), signature.Render(method.Type()))
	}
	slot, err := newMethodTarget(method, entry, recv)
	if err != nil {
		return err
	}
	d.slot = slot
	return nil
}

// Assign 跨持有者赋值, 签名一致才会成功, 失败时不触碰当前绑定
func (d *Delegate[F]) Assign(src *Dynamic) perror.LErrorDesc {
	if src == nil || src.slot == nil {
		return perror.LWarpStdError(errorhandler.ErrDelegateNotBound,
			"assign from unbound delegate")
	}
	mySig, err := signature.FromType(d.funcType())
	if err != nil {
		return err
	}
	if !mySig.Equal(src.slot.sig) {
		return perror.LWarpStdError(errorhandler.ErrSignatureMismatch,
			mySig.String(), src.slot.sig.String())
	}
	d.slot = src.slot
	return nil
}

// Target 返回绑定的可调用值, 未绑定时返回哨兵而不是nil,
// 调用哨兵会以ErrDelegateNotBound panic
func (d *Delegate[F]) Target() F {
	if d.slot != nil {
		return d.slot.fn.Interface().(F)
	}
	if !d.sentinelOK {
		typ := d.funcType()
		d.sentinel = reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
			panic(perror.LWarpStdError(errorhandler.ErrDelegateNotBound,
				"invoke on unbound delegate", signature.Render(typ)))
		}).Interface().(F)
		d.sentinelOK = true
	}
	return d.sentinel
}

func (d *Delegate[F]) HasTarget() bool {
	return d.slot != nil
}

// TargetIs 与Dynamic.TargetIs一致的身份比较
func (d *Delegate[F]) TargetIs(fn F) bool {
	if d.slot == nil {
		return false
	}
	return d.slot.targetIs(fn)
}

func (d *Delegate[F]) Kind() TargetKind {
	if d.slot == nil {
		return KindInvalid
	}
	return d.slot.kind
}

// Identity 固定签名持有者的指纹与是否绑定无关, 它由F决定
func (d *Delegate[F]) Identity() signature.Identity {
	return d.Signature().Identity()
}

func (d *Delegate[F]) Signature() *signature.Signature {
	sig, err := signature.FromType(d.funcType())
	if err != nil {
		panic(err)
	}
	return sig
}

// Equal 绑定着同一个目标即相等, 签名由类型系统保证一致
func (d *Delegate[F]) Equal(other *Delegate[F]) bool {
	if other == nil {
		return false
	}
	if d.slot == nil || other.slot == nil {
		return d.slot == other.slot
	}
	return d.slot.codePtr == other.slot.codePtr &&
		d.slot.dataPtr == other.slot.dataPtr
}

func (d *Delegate[F]) Reset() {
	d.slot = nil
}

func (d *Delegate[F]) holderSlot() *target {
	return d.slot
}

// AssignTo 方向助手, 把动态持有者的目标搬运到固定签名持有者
func AssignTo[F any](src *Dynamic, dst *Delegate[F]) perror.LErrorDesc {
	return dst.Assign(src)
}
