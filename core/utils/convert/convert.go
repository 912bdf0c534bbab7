package convert

import (
	"reflect"
	"unsafe"
)

// StringToBytes 转换过程不拷贝数据, 所以返回的[]byte不能被修改
func StringToBytes(str string) (p []byte) {
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&p))
	hdr.Data = (*reflect.StringHeader)(unsafe.Pointer(&str)).Data
	hdr.Len = len(str)
	hdr.Cap = len(str)
	return
}

// BytesToString 转换过程不拷贝数据, p被修改时返回的string也会被修改
func BytesToString(p []byte) string {
	return *(*string)(unsafe.Pointer(&p))
}
