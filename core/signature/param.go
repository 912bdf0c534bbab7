package signature

import (
	"reflect"
	"strings"
)

// ParamClass 形参的分类, 决定兼容性检查时走哪一条规则
type ParamClass uint8

const (
	// ParamValue 普通的值传递形参, 被调用者看到的是一份拷贝
	ParamValue ParamClass = iota
	// ParamPointer 指针形参, 被调用者可以通过它写回数据
	ParamPointer
	// ParamInterface 接口形参, 任何实现了该接口的实参都可以绑定
	ParamInterface
	// ParamFunc func类型的形参
	ParamFunc
	// ParamVariadic 处于末尾的...T形参, 接受零个或者多个尾部实参
	ParamVariadic
)

func (p ParamClass) String() string {
	switch p {
	case ParamValue:
		return "value"
	case ParamPointer:
		return "pointer"
	case ParamInterface:
		return "interface"
	case ParamFunc:
		return "func"
	case ParamVariadic:
		return "variadic"
	default:
		return "unknown"
	}
}

// Param 形参的结构化描述, 兼容性检查只依赖这份记录
// 渲染出来的文本只用于错误信息, 绝不参与匹配
type Param struct {
	Type  reflect.Type
	Class ParamClass
	// 参数名只有从文本解析的签名才会携带
	Name string
}

// ClassifyParam 每一个Go类型都恰好落在一个分类上
// 变长参数的分类在构造Signature时根据位置单独识别
func ClassifyParam(t reflect.Type) ParamClass {
	switch t.Kind() {
	case reflect.Ptr:
		return ParamPointer
	case reflect.Interface:
		return ParamInterface
	case reflect.Func:
		return ParamFunc
	default:
		return ParamValue
	}
}

// nilable 形参的类型是否可以接受一个无类型的nil
func (p Param) nilable() bool {
	switch p.Class {
	case ParamPointer, ParamInterface, ParamFunc:
		return true
	case ParamVariadic:
		return true
	default:
		switch p.Type.Kind() {
		case reflect.Slice, reflect.Map, reflect.Chan, reflect.UnsafePointer:
			return true
		default:
			return false
		}
	}
}

// ArgClass 调用现场单个实参的分类
type ArgClass uint8

const (
	// ArgUntypedNil 字面的nil接口, 没有任何动态类型
	ArgUntypedNil ArgClass = iota
	// ArgValue 非nil/非指针/非func的值
	ArgValue
	// ArgPointer 指针值, 带类型的nil指针也属于这个分类
	ArgPointer
	// ArgFunc func值
	ArgFunc
)

func (a ArgClass) String() string {
	switch a {
	case ArgUntypedNil:
		return "untyped-nil"
	case ArgValue:
		return "value"
	case ArgPointer:
		return "pointer"
	case ArgFunc:
		return "func"
	default:
		return "unknown"
	}
}

// Arg 单个实参的分类结果
type Arg struct {
	Type  reflect.Type
	Class ArgClass
	Value interface{}
}

// CallSite 一次调用的全部实参分类, 由持有者在每次动态调用时构造
type CallSite struct {
	Args []Arg
}

// ClassifyArgs 对一组实参做逐个分类
func ClassifyArgs(args []interface{}) *CallSite {
	site := &CallSite{Args: make([]Arg, len(args))}
	for i, v := range args {
		if v == nil {
			site.Args[i] = Arg{Class: ArgUntypedNil}
			continue
		}
		typ := reflect.TypeOf(v)
		var class ArgClass
		switch typ.Kind() {
		case reflect.Ptr:
			class = ArgPointer
		case reflect.Func:
			class = ArgFunc
		default:
			class = ArgValue
		}
		site.Args[i] = Arg{Type: typ, Class: class, Value: v}
	}
	return site
}

func (c *CallSite) NumArgs() int {
	return len(c.Args)
}

// String 渲染调用现场的实参类型列表, 形如(int, *bytes.Buffer, <nil>)
// 只用于诊断信息
func (c *CallSite) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, arg := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if arg.Class == ArgUntypedNil {
			sb.WriteString("<nil>")
			continue
		}
		sb.WriteString(arg.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
