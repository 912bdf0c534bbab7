package signature

import (
	"fmt"
	"reflect"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
)

// planOp 调用计划中单个实参的处理指令
type planOp uint8

const (
	// opAsIs 实参类型与形参完全兼容, 直接使用
	opAsIs planOp = iota
	// opConvert 宽松匹配接受的实参, 调用前转换到形参类型
	opConvert
	// opZero 无类型nil, 调用前物化为形参类型的零值
	opZero
)

type planInstr struct {
	op  planOp
	typ reflect.Type
}

// Plan 一次匹配成功的产物, 按它物化实参向量不需要再查询任何规则
type Plan struct {
	sig    *Signature
	instrs []planInstr
}

func (p *Plan) Signature() *Signature {
	return p.sig
}

func (p *Plan) NumOut() int {
	return p.sig.NumOut()
}

// MakeArgs 按照计划把调用现场物化为reflect.Value向量
func (p *Plan) MakeArgs(site *CallSite) []reflect.Value {
	values := make([]reflect.Value, len(p.instrs))
	for i, instr := range p.instrs {
		switch instr.op {
		case opZero:
			values[i] = reflect.Zero(instr.typ)
		case opConvert:
			values[i] = reflect.ValueOf(site.Args[i].Value).Convert(instr.typ)
		default:
			values[i] = reflect.ValueOf(site.Args[i].Value)
		}
	}
	return values
}

// Matcher 签名与调用现场的兼容性检查器, 逐个形参从左到右检查,
// 任何一个形参被拒绝则整个签名不兼容, 不会出现部分匹配
// 零值即严格匹配器
type Matcher struct {
	// 宽松模式下值形参额外接受可转换的实参,
	// 会丢失信息的string/数值交叉转换除外
	lenient bool
	eHandle perror.LErrors
}

func NewMatcher(lenient bool) *Matcher {
	return &Matcher{lenient: lenient}
}

func (m *Matcher) SetErrHandler(eh perror.LErrors) {
	m.eHandle = eh
}

func (m *Matcher) errHandler() perror.LErrors {
	if m.eHandle == nil {
		return errorhandler.DefaultErrHandler
	}
	return m.eHandle
}

// Match 检查调用现场与签名的兼容性, 兼容时产出调用计划
// 失败的报告里同时带上形参签名/实参渲染/首个被拒绝的下标
func (m *Matcher) Match(sig *Signature, site *CallSite) (*Plan, perror.LErrorDesc) {
	nIn := sig.NumIn()
	nArgs := site.NumArgs()
	fixed := nIn
	if sig.IsVariadic() {
		fixed = nIn - 1
		if nArgs < fixed {
			return nil, m.mismatch(sig, site, -1,
				fmt.Sprintf("requires at least %d args, got %d", fixed, nArgs))
		}
	} else if nArgs != nIn {
		return nil, m.mismatch(sig, site, -1,
			fmt.Sprintf("requires %d args, got %d", nIn, nArgs))
	}
	plan := &Plan{
		sig:    sig,
		instrs: make([]planInstr, nArgs),
	}
	for i := 0; i < nArgs; i++ {
		var param Param
		if i < fixed {
			param = sig.In(i)
		} else {
			// 变长尾部的每一个实参都按元素类型检查
			tail := sig.In(nIn - 1)
			param = Param{Type: tail.Type, Class: ClassifyParam(tail.Type)}
		}
		instr, reason := m.matchOne(param, site.Args[i])
		if reason != "" {
			return nil, m.mismatch(sig, site, i, reason)
		}
		plan.instrs[i] = instr
	}
	return plan, nil
}

// Compatible Match的免报告形式, 驱动Invokable这类探测查询
func (m *Matcher) Compatible(sig *Signature, site *CallSite) bool {
	_, err := m.Match(sig, site)
	return err == nil
}

// matchOne 单个形参的判定, 返回的reason非空表示拒绝
func (m *Matcher) matchOne(param Param, arg Arg) (planInstr, string) {
	// 完全一致的类型直接通过, 这是动态调用最常见的路径
	if arg.Class != ArgUntypedNil && arg.Type == param.Type {
		return planInstr{op: opAsIs}, ""
	}
	if arg.Class == ArgUntypedNil {
		if !param.nilable() {
			return planInstr{}, fmt.Sprintf(
				"untyped nil can not bind to %s parameter %s",
				param.Class, param.Type)
		}
		return planInstr{op: opZero, typ: param.Type}, ""
	}
	switch param.Class {
	case ParamPointer:
		// 指针形参绝不接受非指针实参, 它是可写回的引用
		if arg.Class != ArgPointer {
			return planInstr{}, fmt.Sprintf(
				"parameter %s requires a pointer, got %s %s",
				param.Type, arg.Class, arg.Type)
		}
		return planInstr{}, fmt.Sprintf(
			"pointer parameter %s does not accept %s", param.Type, arg.Type)
	case ParamInterface:
		if arg.Type.Implements(param.Type) {
			return planInstr{op: opAsIs}, ""
		}
		return planInstr{}, fmt.Sprintf(
			"%s does not implement %s", arg.Type, param.Type)
	case ParamFunc:
		return planInstr{}, fmt.Sprintf(
			"func parameter %s does not accept %s", param.Type, arg.Type)
	default:
		if arg.Type.AssignableTo(param.Type) {
			return planInstr{op: opAsIs}, ""
		}
		if m.lenient && convertibleLossless(arg.Type, param.Type) {
			return planInstr{op: opConvert, typ: param.Type}, ""
		}
		return planInstr{}, fmt.Sprintf(
			"%s is not assignable to %s", arg.Type, param.Type)
	}
}

// convertibleLossless 宽松匹配允许的转换, 排除掉整数和string之间
// 这类会改变语义的交叉转换
func convertibleLossless(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	fromStr := from.Kind() == reflect.String
	toStr := to.Kind() == reflect.String
	if fromStr != toStr {
		return false
	}
	return true
}

func (m *Matcher) mismatch(sig *Signature, site *CallSite, index int, reason string) perror.LErrorDesc {
	desc := m.errHandler().LWarpErrorDesc(errorhandler.ErrBadArguments,
		sig.String(), site.String())
	if index >= 0 {
		desc.AppendMore(fmt.Sprintf("index %d: %s", index, reason))
	} else {
		desc.AppendMore(reason)
	}
	return desc
}
