package container

import (
	"sync"
	"sync/atomic"
)

type RCUMapElement[Key comparable, Val any] struct {
	Key   Key
	Value Val
}

// RCUMap 读取走无锁快照, 写入在锁内整表拷贝后原子替换
// 适合几乎无写的小表, 比如分发表和类型名表, key-value很多时拷贝开销很大
type RCUMap[Key comparable, Val any] struct {
	// 只串行化写入, 读取不需要上锁
	mu      sync.Mutex
	pointer atomic.Pointer[map[Key]Val]
}

func NewRCUMap[K comparable, V any]() *RCUMap[K, V] {
	m := new(RCUMap[K, V])
	tmp := make(map[K]V, 128)
	m.pointer.Store(&tmp)
	return m
}

func (R *RCUMap[Key, Val]) LoadOk(key Key) (Val, bool) {
	snapshot := R.pointer.Load()
	val, ok := (*snapshot)[key]
	return val, ok
}

func (R *RCUMap[Key, Val]) Store(key Key, val Val) {
	R.StoreMulti([]RCUMapElement[Key, Val]{{Key: key, Value: val}})
}

// StoreMulti 一批写入只触发一次拷贝
func (R *RCUMap[Key, Val]) StoreMulti(kvs []RCUMapElement[Key, Val]) {
	if len(kvs) == 0 {
		return
	}
	R.mu.Lock()
	defer R.mu.Unlock()
	next := R.copyLocked()
	for _, kv := range kvs {
		next[kv.Key] = kv.Value
	}
	R.pointer.Store(&next)
}

func (R *RCUMap[Key, Val]) Delete(key Key) {
	R.DeleteOk(key)
}

func (R *RCUMap[Key, Val]) DeleteOk(key Key) (Val, bool) {
	R.mu.Lock()
	defer R.mu.Unlock()
	old := *R.pointer.Load()
	val, ok := old[key]
	if !ok {
		return val, false
	}
	next := make(map[Key]Val, len(old))
	for k, v := range old {
		if k == key {
			continue
		}
		next[k] = v
	}
	R.pointer.Store(&next)
	return val, true
}

// Range 在调用时刻的快照上遍历, fn返回false时提前停止
// 遍历期间发布的新快照不会被本次遍历看到
func (R *RCUMap[Key, Val]) Range(fn func(key Key, val Val) bool) {
	snapshot := *R.pointer.Load()
	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}

func (R *RCUMap[Key, Val]) Len() int {
	return len(*R.pointer.Load())
}

func (R *RCUMap[Key, Val]) copyLocked() map[Key]Val {
	snapshot := *R.pointer.Load()
	next := make(map[Key]Val, len(snapshot))
	for k, v := range snapshot {
		next[k] = v
	}
	return next
}
