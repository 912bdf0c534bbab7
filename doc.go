// Package littledelegate 类型擦除的可调用持有者与进程内方法分发
//
// 核心实现位于core/下的各个子包, 这里只把最常用的入口重导出一份:
//
//	core/signature  签名渲染/指纹/解析与调用兼容性匹配
//	core/delegate   Delegate[F]与Dynamic两种持有者
//	core/registry   以Source.Method为键的委托注册中心
//
// Delegate[F]是泛型类型, 受限于类型别名的语法, 请直接使用
// delegate.Delegate[F]
package littledelegate

import (
	"github.com/nyan233/littledelegate/core/delegate"
	"github.com/nyan233/littledelegate/core/registry"
	"github.com/nyan233/littledelegate/core/signature"
)

type (
	Dynamic    = delegate.Dynamic
	TargetKind = delegate.TargetKind
	Registry   = registry.Registry
	Signature  = signature.Signature
	Identity   = signature.Identity
)

var (
	NewDynamic     = delegate.New
	NewRegistry    = registry.New
	Fingerprint    = signature.Fingerprint
	ParseSignature = signature.Parse
	RegisterType   = signature.RegisterType
)
