package signature

import (
	"github.com/nyan233/littledelegate/core/utils/convert"
)

// FingerprintPrime Horner滚动哈希使用的乘数, 文本与指纹的对应关系
// 依赖于这个常量, 修改它会使已经持久化的指纹全部失效
const FingerprintPrime = 73

// Identity 签名的指纹, 由签名的规范文本计算而来
// 两个渲染结果相同的签名总是产生相同的指纹, 不同的签名之间
// 不保证不发生碰撞
type Identity uint32

// Fingerprint 在签名的规范文本上计算Horner滚动哈希
// 种子为文本的第一个字节, 空文本的指纹为0
func Fingerprint(text string) Identity {
	return FingerprintBytes(convert.StringToBytes(text))
}

func FingerprintBytes(text []byte) Identity {
	if len(text) == 0 {
		return 0
	}
	hash := Identity(text[0])
	for i := 1; i < len(text); i++ {
		hash = hash*FingerprintPrime + Identity(text[i])
	}
	return hash
}
