// Package delegate 类型擦除的可调用持有者
//
// 提供两种形态: Delegate[F]的签名在编译期固定, 绑定不匹配的目标
// 无法通过编译; Dynamic完全擦除签名, 任何可调用目标都能绑定,
// 实参兼容性在调用时由签名匹配引擎检查
package delegate
