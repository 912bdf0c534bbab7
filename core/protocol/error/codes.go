package error

import "strconv"

// 定义littledelegate内部会使用到的错误码

type Code int

// String 的结果总是一个合法的Json字符串, 未注册的错误码也不例外
func (c Code) String() string {
	v, ok := mappingStr[c]
	if !ok {
		return `"Code(` + strconv.Itoa(int(c)) + `)"`
	}
	return `"` + v + `"`
}

const (
	Success             = 200   // 成功返回
	CallPanicked        = 500   // 被调用的目标发生了panic
	Unknown             = 300   // 目标返回了错误,但不是littledelegate可以识别的错误
	ParseSignatureErr   = 1020  // 签名文本解码失败
	NotCallable         = 1030  // 被绑定的目标不是一个可调用的值
	BadArguments        = 1040  // 调用参数与签名不兼容
	SignatureMismatch   = 1050  // 两个持有者之间的签名指纹不一致
	DelegateNotBound    = 1404  // 持有者没有绑定任何目标
	BadRegisterName     = 2400  // 注册的服务名不符合Source.Method的格式
	MethodNotFound      = 2404  // 需要调用的方法未被注册
	SourceAlreadyExists = 2409  // 同名的服务源已被注册
	RegistryClosed      = 2503  // 注册中心已经停止
	PluginError         = 10275 // 插件在某个回调中返回了错误
)

var mappingStr = map[Code]string{
	Success:             "Success",
	CallPanicked:        "CallPanicked",
	Unknown:             "Unknown",
	ParseSignatureErr:   "ParseSignatureErr",
	NotCallable:         "NotCallable",
	BadArguments:        "BadArguments",
	SignatureMismatch:   "SignatureMismatch",
	DelegateNotBound:    "DelegateNotBound",
	BadRegisterName:     "BadRegisterName",
	MethodNotFound:      "MethodNotFound",
	SourceAlreadyExists: "SourceAlreadyExists",
	RegistryClosed:      "RegistryClosed",
	PluginError:         "PluginError",
}
