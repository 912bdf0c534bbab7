// Package pool littledelegate自带的goroutine池
package pool

const MaxTaskPoolSize = 1024 * 16

type Hash interface {
	~string | ~[]byte | ~int64 | ~uint64
}

// RecoverFunc 池中的任务发生panic时的回调, poolId是执行任务的worker编号
type RecoverFunc func(poolId int, err interface{})

type TaskPool[Key Hash] interface {
	Push(key Key, task func()) error
	Stop() error
	// LiveSize 存活的goroutine数量
	LiveSize() int
	// BufSize 缓冲区中存在的任务数量
	BufSize() int
	// ExecuteSuccess 任务池执行成功的任务数量
	ExecuteSuccess() int
	// ExecuteError 任务池执行失败的任务数量
	ExecuteError() int
}

type TaskPoolBuilder[Key Hash] interface {
	Builder(bufSize, minSize, maxSize int32, rf RecoverFunc) TaskPool[Key]
}
