package reflect

import (
	"reflect"
	"unsafe"
)

type Eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

func RealType(value reflect.Value) reflect.Value {
	if value.Kind() != reflect.Interface {
		return value
	}
	return RealType(reflect.ValueOf(value.Interface()))
}

// InterDataPointer 获得val对应eface-data指针的值
func InterDataPointer(val interface{}) unsafe.Pointer {
	return (*Eface)(unsafe.Pointer(&val)).data
}

// DeepEqualNotType 主要用于比较
func DeepEqualNotType(x, y interface{}) bool {
	if x == nil && y == nil {
		return true
	} else if x == nil || y == nil {
		return false
	}
	xValue := reflect.ValueOf(x)
	yValue := reflect.ValueOf(y)
	if xValue.Type() == reflect.TypeOf([]interface{}{0}) || yValue.Type() == reflect.TypeOf([]interface{}{0}) {
		if xValue.Kind() != reflect.Slice || yValue.Kind() != reflect.Slice {
			return false
		}
		return deepEqualNotTypeOnArray(xValue, yValue)
	} else if xValue.Type() != yValue.Type() {
		return false
	} else {
		return reflect.DeepEqual(x, y)
	}
}

func deepEqualNotTypeOnArray(x, y reflect.Value) bool {
	if x.Len() != y.Len() {
		return false
	}
	var rangeN reflect.Value
	var cmpN reflect.Value
	if _, xOK := x.Interface().([]interface{}); xOK {
		rangeN = x
		cmpN = y
	} else {
		rangeN = y
		cmpN = x
	}
	length := x.Len()
	for i := 0; i < length; i++ {
		rangeV := RealType(rangeN.Index(i))
		cmpV := RealType(cmpN.Index(i))
		if rangeV.Kind() == reflect.Slice && cmpV.Kind() == reflect.Slice {
			if !deepEqualNotTypeOnArray(rangeV, cmpV) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(rangeV.Interface(), cmpV.Interface()) {
			return false
		}
	}
	return true
}
