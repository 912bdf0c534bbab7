package signature

import (
	"reflect"
	"strings"
)

// Render 产生func类型的规范文本, 形如func(int, *bytes.Buffer) error
// 变长参数渲染为...T, 单个返回值不加括号, 参数名不参与渲染
// 所以同一个函数类型在任何上下文中的渲染结果都是一致的
func Render(t reflect.Type) string {
	if t == nil || t.Kind() != reflect.Func {
		return "<not-func>"
	}
	var sb strings.Builder
	sb.WriteString("func(")
	nIn := t.NumIn()
	for i := 0; i < nIn; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if t.IsVariadic() && i == nIn-1 {
			sb.WriteString("...")
			sb.WriteString(t.In(i).Elem().String())
			continue
		}
		sb.WriteString(t.In(i).String())
	}
	sb.WriteByte(')')
	switch nOut := t.NumOut(); nOut {
	case 0:
	case 1:
		sb.WriteByte(' ')
		sb.WriteString(t.Out(0).String())
	default:
		sb.WriteString(" (")
		for i := 0; i < nOut; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(t.Out(i).String())
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
