package signature

import (
	"context"
	"reflect"
	"unsafe"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	"github.com/nyan233/littledelegate/core/container"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	reflect2 "github.com/nyan233/littledelegate/internal/reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	// 按照运行时类型描述符缓存签名, 同一个func类型的重复绑定
	// 不需要重新渲染/重新分类
	typeCache container.MutexMap[unsafe.Pointer, *Signature]
)

// Signature 一个可调用签名的完整描述: 运行时类型/规范文本/指纹/
// 结构化的形参分类, 从文本解析的签名typ可能为nil
type Signature struct {
	typ      reflect.Type
	text     string
	identity Identity
	params   []Param
	results  []reflect.Type
	variadic bool
	// 首个形参是否为context.Context, 识别一次之后调用路径不再做接口断言
	supportContext bool
}

// FromType 从运行时func类型构造签名, 结果会被缓存
func FromType(t reflect.Type) (*Signature, perror.LErrorDesc) {
	if t == nil || t.Kind() != reflect.Func {
		return nil, perror.LWarpStdError(errorhandler.ErrNotCallable,
			"signature requires a func type")
	}
	key := reflect2.TypePtr(t)
	if sig, ok := typeCache.LoadOk(key); ok {
		return sig, nil
	}
	sig := build(t)
	typeCache.Store(key, sig)
	return sig, nil
}

// FromValue 从func值构造签名
func FromValue(fn interface{}) (*Signature, perror.LErrorDesc) {
	if fn == nil {
		return nil, perror.LWarpStdError(errorhandler.ErrNotCallable,
			"signature source is nil")
	}
	return FromType(reflect.TypeOf(fn))
}

func build(t reflect.Type) *Signature {
	sig := &Signature{
		typ:      t,
		variadic: t.IsVariadic(),
	}
	nIn := t.NumIn()
	sig.params = make([]Param, nIn)
	for i := 0; i < nIn; i++ {
		pTyp := t.In(i)
		param := Param{Type: pTyp, Class: ClassifyParam(pTyp)}
		if sig.variadic && i == nIn-1 {
			param.Class = ParamVariadic
			param.Type = pTyp.Elem()
		}
		sig.params[i] = param
	}
	nOut := t.NumOut()
	sig.results = make([]reflect.Type, nOut)
	for i := 0; i < nOut; i++ {
		sig.results[i] = t.Out(i)
	}
	if nIn > 0 && t.In(0) == contextType {
		sig.supportContext = true
	}
	sig.text = Render(t)
	sig.identity = Fingerprint(sig.text)
	return sig
}

func (s *Signature) NumIn() int {
	return len(s.params)
}

func (s *Signature) NumOut() int {
	return len(s.results)
}

func (s *Signature) In(i int) Param {
	return s.params[i]
}

func (s *Signature) Out(i int) reflect.Type {
	return s.results[i]
}

func (s *Signature) IsVariadic() bool {
	return s.variadic
}

func (s *Signature) SupportContext() bool {
	return s.supportContext
}

// Type 运行时func类型, 从文本解析且存在无法解析的名字时为nil
func (s *Signature) Type() reflect.Type {
	return s.typ
}

func (s *Signature) String() string {
	return s.text
}

func (s *Signature) Identity() Identity {
	return s.identity
}

// Equal 双方都携带运行时类型时直接比较类型描述符,
// 否则退化到指纹比较
func (s *Signature) Equal(other *Signature) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.typ != nil && other.typ != nil {
		return s.typ == other.typ
	}
	return s.identity == other.identity
}
