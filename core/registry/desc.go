package registry

import (
	"reflect"
	"sync"

	"github.com/nyan233/littledelegate/core/delegate"
	"github.com/nyan233/littledelegate/core/signature"
)

// Source 一个服务源: 类型信息加上它名下注册的全部过程
// 发布之后Register/Deregister仍会修改过程集, 读写都要经过锁
type Source struct {
	InstanceType reflect.Type
	mu           sync.Mutex
	processSet   map[string]*delegate.Dynamic
}

// addProcess 过程重名时拒绝写入并返回false
func (s *Source) addProcess(method string, holder *delegate.Dynamic) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processSet == nil {
		s.processSet = make(map[string]*delegate.Dynamic, 4)
	}
	if _, ok := s.processSet[method]; ok {
		return false
	}
	s.processSet[method] = holder
	return true
}

// deleteProcess 返回删除之后剩余的过程数
func (s *Source) deleteProcess(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processSet, method)
	return len(s.processSet)
}

func (s *Source) methodNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.processSet))
	for name := range s.processSet {
		names = append(names, name)
	}
	return names
}

// snapshot 过程集的浅拷贝, 遍历时不需要持有锁
func (s *Source) snapshot() map[string]*delegate.Dynamic {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]*delegate.Dynamic, len(s.processSet))
	for name, holder := range s.processSet {
		set[name] = holder
	}
	return set
}

// MethodDesc 过程的自省描述
type MethodDesc struct {
	Name          string             `json:"name"`
	SignatureText string             `json:"signature_text"`
	Identity      signature.Identity `json:"identity"`
	Kind          string             `json:"kind"`
	Variadic      bool               `json:"variadic"`
}

// MethodTableDesc 服务源的方法表, MethodTable查询的产物
type MethodTableDesc struct {
	SourceName string       `json:"source_name"`
	Methods    []MethodDesc `json:"methods"`
}
