package delegate

// TargetKind 被绑定目标的存储类别, 绑定时识别一次
// 持有者之后的全部行为都由它和安装的调度入口决定
type TargetKind uint8

const (
	// KindInvalid 零值, 未绑定
	KindInvalid TargetKind = iota
	// KindFreeFunc 顶层函数
	KindFreeFunc
	// KindMethodValue 方法值, 即recv.Method求值的结果
	KindMethodValue
	// KindBoundMethod 通过BindMethod按名字绑定的方法, 保留接收者
	KindBoundMethod
	// KindClosure 函数字面量, 有无捕获在Go里是同一种存储类别,
	// 捕获环境由运行时管理, 重绑定后由GC回收
	KindClosure
	// KindFunctorObject 携带Invoke方法的对象, 按指针绑定不拷贝
	KindFunctorObject
	// KindWrapped 另一个持有者, 绑定时解开一层, 不产生双重间接
	KindWrapped
)

func (k TargetKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindFreeFunc:
		return "free-func"
	case KindMethodValue:
		return "method-value"
	case KindBoundMethod:
		return "bound-method"
	case KindClosure:
		return "closure"
	case KindFunctorObject:
		return "functor-object"
	case KindWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}
