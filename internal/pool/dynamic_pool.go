package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// DynamicTaskPool 按需伸缩的goroutine池, 常驻的worker数量为minSize
// 缓冲区满时会临时扩容到maxSize, 临时worker在缓冲区空闲后自行退出
// 它不提供FixedPool那样的同key串行保证
type DynamicTaskPool[Key Hash] struct {
	tasks     chan func()
	recoverFn RecoverFunc
	cancelCtx context.Context
	cancelFn  context.CancelFunc
	wg        *sync.WaitGroup
	maxSize   int32
	liveSize  int32
	closed    int32
	_         [128 - 8]byte
	success   uint64
	_         [128 - 8]byte
	failed    uint64
}

func NewDynamicPool[Key Hash](bufSize, minSize, maxSize int32, rf RecoverFunc) TaskPool[Key] {
	if bufSize > MaxTaskPoolSize {
		bufSize = MaxTaskPoolSize
	}
	pool := &DynamicTaskPool[Key]{
		tasks:     make(chan func(), bufSize),
		recoverFn: rf,
		wg:        new(sync.WaitGroup),
		maxSize:   maxSize,
	}
	pool.cancelCtx, pool.cancelFn = context.WithCancel(context.Background())
	for i := int32(0); i < minSize; i++ {
		pool.wg.Add(1)
		atomic.AddInt32(&pool.liveSize, 1)
		go pool.worker(int(i), true)
	}
	return pool
}

// worker 常驻worker阻塞在任务通道上直到池被停止, 停止时先清空
// 缓冲区再退出; 非常驻worker在缓冲区空闲时自行退出
func (p *DynamicTaskPool[Key]) worker(poolId int, resident bool) {
	defer p.wg.Done()
	defer atomic.AddInt32(&p.liveSize, -1)
	if !resident {
		for {
			select {
			case fn := <-p.tasks:
				p.exec(poolId, fn)
			default:
				return
			}
		}
	}
	done := p.cancelCtx.Done()
	for {
		select {
		case fn := <-p.tasks:
			p.exec(poolId, fn)
		case <-done:
			for {
				select {
				case fn := <-p.tasks:
					p.exec(poolId, fn)
				default:
					return
				}
			}
		}
	}
}

func (p *DynamicTaskPool[Key]) Push(key Key, fn func()) error {
	if atomic.LoadInt32(&p.closed) == 1 {
		return errors.New("pool already closed")
	}
	select {
	case p.tasks <- fn:
		return nil
	default:
	}
	// 缓冲区已满, 尝试启动临时worker
	if live := atomic.LoadInt32(&p.liveSize); live < p.maxSize &&
		atomic.CompareAndSwapInt32(&p.liveSize, live, live+1) {
		p.wg.Add(1)
		go p.worker(int(live), false)
	}
	p.tasks <- fn
	return nil
}

func (p *DynamicTaskPool[Key]) Stop() error {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return errors.New("pool already closed")
	}
	p.cancelFn()
	p.wg.Wait()
	return nil
}

func (p *DynamicTaskPool[Key]) LiveSize() int {
	return int(atomic.LoadInt32(&p.liveSize))
}

func (p *DynamicTaskPool[Key]) BufSize() int {
	return len(p.tasks)
}

func (p *DynamicTaskPool[Key]) ExecuteSuccess() int {
	return int(atomic.LoadUint64(&p.success))
}

func (p *DynamicTaskPool[Key]) ExecuteError() int {
	return int(atomic.LoadUint64(&p.failed))
}

func (p *DynamicTaskPool[Key]) exec(poolId int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddUint64(&p.failed, 1)
			if p.recoverFn != nil {
				p.recoverFn(poolId, r)
			}
		} else {
			atomic.AddUint64(&p.success, 1)
		}
	}()
	fn()
}

type DynamicPoolBuilder[Key Hash] struct{}

func NewDynamicPoolBuilder[Key Hash]() TaskPoolBuilder[Key] {
	return DynamicPoolBuilder[Key]{}
}

func (b DynamicPoolBuilder[Key]) Builder(bufSize, minSize, maxSize int32, rf RecoverFunc) TaskPool[Key] {
	return NewDynamicPool[Key](bufSize, minSize, maxSize, rf)
}
