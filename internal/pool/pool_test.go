package pool

import (
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const nTask = 1000

func TestDynamicPool(t *testing.T) {
	var pErr int64
	pool := NewDynamicPool[string](MaxTaskPoolSize, int32(runtime.NumCPU()*4), 1024, func(poolId int, err interface{}) {
		atomic.AddInt64(&pErr, 1)
	})
	var count int64
	var wg sync.WaitGroup
	wg.Add(nTask)
	for i := 0; i < nTask; i++ {
		iKey := strconv.Itoa(i)
		err := pool.Push(iKey, func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
		assert.Nil(t, err)
	}
	wg.Wait()
	assert.Equal(t, int64(nTask), atomic.LoadInt64(&count))
	// 计数器在任务返回之后才会更新, 所以这里只能等待它收敛
	assert.Eventually(t, func() bool {
		return pool.ExecuteSuccess() == nTask
	}, time.Second*3, time.Millisecond*10)
	assert.Nil(t, pool.Push("panic", func() {
		panic("test recover")
	}))
	assert.Eventually(t, func() bool {
		return pool.ExecuteError() == 1 && atomic.LoadInt64(&pErr) == 1
	}, time.Second*3, time.Millisecond*10)
	assert.Nil(t, pool.Stop())
	assert.NotNil(t, pool.Stop())
	assert.NotNil(t, pool.Push("closed", func() {}))
}

// 常驻worker在空闲期阻塞在任务通道上, 不退出也不妨碍后续任务
func TestDynamicPoolIdleResident(t *testing.T) {
	pool := NewDynamicPool[string](64, 4, 8, nil)
	assert.Equal(t, 4, pool.LiveSize())
	time.Sleep(time.Millisecond * 100)
	assert.Equal(t, 4, pool.LiveSize())
	var done int32
	assert.Nil(t, pool.Push("idle", func() {
		atomic.AddInt32(&done, 1)
	}))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&done) == 1
	}, time.Second, time.Millisecond*5)
	assert.Nil(t, pool.Stop())
	assert.Equal(t, 0, pool.LiveSize())
}

// Stop之前提交的任务必须在Stop返回前全部执行完
func TestDynamicPoolStopDrains(t *testing.T) {
	pool := NewDynamicPool[string](64, 2, 4, nil)
	var ran int32
	for i := 0; i < 32; i++ {
		assert.Nil(t, pool.Push("drain", func() {
			atomic.AddInt32(&ran, 1)
		}))
	}
	assert.Nil(t, pool.Stop())
	assert.Equal(t, int32(32), atomic.LoadInt32(&ran))
}

func TestFixedPoolKeyOrder(t *testing.T) {
	pool := NewFixedPool[string](MaxTaskPoolSize, 8, 8, nil)
	defer pool.Stop()
	const perKey = 200
	var mu sync.Mutex
	seqs := make(map[string][]int)
	var wg sync.WaitGroup
	keys := []string{"alpha", "beta", "gamma", "delta"}
	wg.Add(len(keys) * perKey)
	for _, key := range keys {
		iKey := key
		for i := 0; i < perKey; i++ {
			iSeq := i
			err := pool.Push(iKey, func() {
				defer wg.Done()
				mu.Lock()
				seqs[iKey] = append(seqs[iKey], iSeq)
				mu.Unlock()
			})
			assert.Nil(t, err)
		}
	}
	wg.Wait()
	// 相同key的任务被哈希到同一个worker, 必须观察到提交顺序
	for _, key := range keys {
		seq := seqs[key]
		assert.Equal(t, perKey, len(seq))
		for i, v := range seq {
			assert.Equal(t, i, v)
		}
	}
}

func BenchmarkTaskPool(b *testing.B) {
	pool := NewDynamicPool[string](MaxTaskPoolSize, 1024, 4096, nil)
	defer pool.Stop()
	b.Run("TaskPool", func(b *testing.B) {
		b.ReportAllocs()
		var wg sync.WaitGroup
		for i := 0; i < b.N; i++ {
			wg.Add(nTask)
			for j := 0; j < nTask; j++ {
				_ = pool.Push("bench", func() {
					time.Sleep(time.Microsecond)
					wg.Done()
				})
			}
			wg.Wait()
		}
	})
	b.Run("NoTaskPool", func(b *testing.B) {
		b.ReportAllocs()
		var wg sync.WaitGroup
		for i := 0; i < b.N; i++ {
			wg.Add(nTask)
			for j := 0; j < nTask; j++ {
				go func() {
					time.Sleep(time.Microsecond)
					wg.Done()
				}()
			}
			wg.Wait()
		}
	})
}
