package reflect

import (
	"reflect"
	"testing"
	"unsafe"
)

type callTarget struct{}

func (c *callTarget) Apply(a0 int, a1 string, a2 int64, a3 int64, a4 uintptr) (string, string, string) {
	return "", "", ""
}

type unsafeFunc func(ptr unsafe.Pointer, a0 int, a1 string, a2 int64, a3 int64, a4 uintptr) (string, string, string)

type methodDesc struct {
	typ  unsafe.Pointer
	data unsafeFunc
}

// 对比不同调用路径的开销, 动态持有者的调度建立在ReflectCall之上
// flag = "gcflags "-l"
func BenchmarkCall(b *testing.B) {
	b.ReportAllocs()
	ct := reflect.ValueOf(new(callTarget))
	b.Run("ReflectCall", func(b *testing.B) {
		args := []reflect.Value{
			reflect.ValueOf(int(0)),
			reflect.ValueOf("hello"),
			reflect.ValueOf(int64(100)),
			reflect.ValueOf(int64(100)),
			reflect.ValueOf(uintptr(10000)),
		}
		method := ct.Method(0)
		for i := 0; i < b.N; i++ {
			method.Call(args)
		}
	})
	b.Run("MethodValueCall", func(b *testing.B) {
		method := ct.Method(0).Interface().(func(a0 int, a1 string, a2 int64, a3 int64, a4 uintptr) (string, string, string))
		for i := 0; i < b.N; i++ {
			method(0, "hello", 100, 100, 10000)
		}
	})
	b.Run("AnonymousFunctionCall", func(b *testing.B) {
		fn := new(callTarget).Apply
		for i := 0; i < b.N; i++ {
			fn(0, "hello", 100, 100, 10000)
		}
	})
	b.Run("UnsafeCall", func(b *testing.B) {
		val := ct.Type().Method(0)
		var uf unsafeFunc
		method := (*methodDesc)(unsafe.Pointer(&val.Func))
		uf = method.data
		ptr := ct.UnsafePointer()
		for i := 0; i < b.N; i++ {
			uf(ptr, 0, "hello", 100, 100, 10000)
		}
	})
	b.Run("FunctionCall", func(b *testing.B) {
		ct := new(callTarget)
		for i := 0; i < b.N; i++ {
			_, _, _ = ct.Apply(0, "hello", 100, 100, 1000)
		}
	})
}
