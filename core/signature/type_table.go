package signature

import (
	"reflect"

	"github.com/nyan233/littledelegate/core/container"
)

// 预声明类型在解析器中总是可见
var builtinTable = map[string]reflect.Type{
	"bool":            reflect.TypeOf(false),
	"int":             reflect.TypeOf(int(0)),
	"int8":            reflect.TypeOf(int8(0)),
	"int16":           reflect.TypeOf(int16(0)),
	"int32":           reflect.TypeOf(int32(0)),
	"int64":           reflect.TypeOf(int64(0)),
	"uint":            reflect.TypeOf(uint(0)),
	"uint8":           reflect.TypeOf(uint8(0)),
	"uint16":          reflect.TypeOf(uint16(0)),
	"uint32":          reflect.TypeOf(uint32(0)),
	"uint64":          reflect.TypeOf(uint64(0)),
	"uintptr":         reflect.TypeOf(uintptr(0)),
	"float32":         reflect.TypeOf(float32(0)),
	"float64":         reflect.TypeOf(float64(0)),
	"complex64":       reflect.TypeOf(complex64(0)),
	"complex128":      reflect.TypeOf(complex128(0)),
	"string":          reflect.TypeOf(""),
	"byte":            reflect.TypeOf(byte(0)),
	"rune":            reflect.TypeOf(rune(0)),
	"error":           reflect.TypeOf((*error)(nil)).Elem(),
	"context.Context": contextType,
}

// typeTable 解析器的进程级名字表, 写入很少读取很多, 所以使用RCUMap
// 复合类型的拼写(指针/切片/map等)由解析器自行组合, 这里只登记命名类型
var typeTable = container.NewRCUMap[string, reflect.Type]()

// RegisterType 以样本值登记一个命名类型, 之后Parse就可以解析
// 引用了它的签名文本, 登记的key是reflect.Type.String()的拼写
func RegisterType(sample interface{}) {
	if sample == nil {
		return
	}
	RegisterTypeOf(reflect.TypeOf(sample))
}

func RegisterTypeOf(t reflect.Type) {
	if t == nil {
		return
	}
	// 指针样本同时登记其指向的类型, &T{}是最顺手的样本写法
	for t.Kind() == reflect.Ptr {
		typeTable.Store(t.String(), t)
		t = t.Elem()
	}
	typeTable.Store(t.String(), t)
}

func lookupTypeName(name string) (reflect.Type, bool) {
	if t, ok := builtinTable[name]; ok {
		return t, true
	}
	return typeTable.LoadOk(name)
}
