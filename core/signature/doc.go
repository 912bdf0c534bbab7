// Package signature 提供委托签名的指纹/渲染/解析与调用兼容性检查
package signature
