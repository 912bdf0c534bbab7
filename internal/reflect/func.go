package reflect

import (
	"reflect"
	"runtime"
	"unsafe"
)

// FuncPointer 获得函数值的代码入口指针
// 顶层函数的结果是稳定的, 方法值返回的是对应方法包装器的指针
// 同一个闭包定义处产生的所有闭包实例共享同一个代码指针
func FuncPointer(fn interface{}) uintptr {
	if fn == nil {
		return 0
	}
	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func {
		return 0
	}
	return val.Pointer()
}

// FuncName 获得代码指针对应的完整符号名, 找不到符号时返回""
func FuncName(pc uintptr) string {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return fn.Name()
}

// TypePtr 获得reflect.Type底层类型描述的指针, 相同的类型总是产生相同的指针
// 可以用作map的key
func TypePtr(typ reflect.Type) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&typ))[1]
}

// MethodValueReceiver 取出方法值包装闭包捕获的接收者字
// 方法值的funcval布局是{pc, recv}, 只对指针接收者的方法值有意义,
// 值接收者捕获的是拷贝, 取到的字不具备身份语义
func MethodValueReceiver(fn interface{}) unsafe.Pointer {
	data := (*Eface)(unsafe.Pointer(&fn)).data
	if data == nil {
		return nil
	}
	type methodValue struct {
		pc   uintptr
		recv unsafe.Pointer
	}
	return (*methodValue)(data).recv
}
