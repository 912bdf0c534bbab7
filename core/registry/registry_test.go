package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	"github.com/nyan233/littledelegate/core/delegate"
	"github.com/nyan233/littledelegate/core/middle/plugin"
	error2 "github.com/nyan233/littledelegate/core/protocol/error"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/nyan233/littledelegate/core/signature"
	"github.com/nyan233/littledelegate/internal/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calcService struct {
	last int
}

func (c *calcService) Add(a, b int) int {
	c.last = a + b
	return c.last
}

func (c *calcService) Sub(a, b int) int {
	c.last = a - b
	return c.last
}

func (c *calcService) Boom() {
	panic("calc boom")
}

type countingPlugin struct {
	plugin.Abstract
	onBind     int32
	beforeCall int32
	afterCall  int32
	lastStatus int32
}

func (p *countingPlugin) OnBind(ctx *plugin.Context, sig *signature.Signature, err perror.LErrorDesc) perror.LErrorDesc {
	atomic.AddInt32(&p.onBind, 1)
	return nil
}

func (p *countingPlugin) BeforeCall(ctx *plugin.Context, args []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	atomic.AddInt32(&p.beforeCall, 1)
	return nil
}

func (p *countingPlugin) AfterCall(ctx *plugin.Context, args, results []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	atomic.AddInt32(&p.afterCall, 1)
	if err != nil {
		atomic.StoreInt32(&p.lastStatus, int32(err.Code()))
	} else {
		atomic.StoreInt32(&p.lastStatus, int32(error2.Success))
	}
	return nil
}

type denyPlugin struct {
	plugin.Abstract
}

func (p *denyPlugin) BeforeCall(ctx *plugin.Context, args []interface{}, err perror.LErrorDesc) perror.LErrorDesc {
	return perror.LWarpStdError(errorhandler.ErrPlugin, "call denied", ctx.Name)
}

func mulInts(a, b int) int {
	return a * b
}

func newTestRegistry(opts ...Option) *Registry {
	opts = append([]Option{WithOpenLogger(false)}, opts...)
	return New(opts...)
}

func TestRegistryRegister(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	require.Nil(t, r.Register("Math.Add", func(a, b int) int { return a + b }))
	results, err := r.Invoke("Math.Add", 3, 4)
	require.Nil(t, err)
	assert.Equal(t, 7, results[0])

	lErr := r.Register("Math.Add", func(a, b int) int { return a * b })
	require.NotNil(t, lErr)
	assert.Equal(t, error2.SourceAlreadyExists, lErr.Code())

	// 函数字面量是闭包, 顶层函数才是自由函数
	holder, ok := r.Lookup("Math.Add")
	require.True(t, ok)
	assert.Equal(t, delegate.KindClosure, holder.Kind())

	require.Nil(t, r.Register("Math.Mul", mulInts))
	holder, ok = r.Lookup("Math.Mul")
	require.True(t, ok)
	assert.Equal(t, delegate.KindFreeFunc, holder.Kind())
}

// 同一个源上的并发注册不应该竞争过程集
func TestRegistryConcurrentRegister(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	const nProc = 16
	var wg sync.WaitGroup
	wg.Add(nProc)
	for i := 0; i < nProc; i++ {
		iSeq := i
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("Same.M%d", iSeq)
			assert.Nil(t, r.Register(name, func(x int) int { return x + iSeq }))
		}()
	}
	wg.Wait()
	methods, err := r.Methods("Same")
	require.Nil(t, err)
	assert.Equal(t, nProc, len(methods))
	for i := 0; i < nProc; i++ {
		results, err := r.Invoke(fmt.Sprintf("Same.M%d", i), 1)
		require.Nil(t, err)
		assert.Equal(t, 1+i, results[0])
	}
}

func TestRegistryBadNames(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	fn := func() {}
	for _, name := range []string{"", "Add", ".Add", "Math.", "a.b.c"} {
		err := r.Register(name, fn)
		require.NotNil(t, err, "register %q", name)
		assert.Equal(t, error2.BadRegisterName, err.Code(), "register %q", name)
	}
}

func TestRegistryRegisterClass(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	svc := &calcService{}
	require.Nil(t, r.RegisterClass("", svc, map[string]bool{"Boom": true}))
	assert.Equal(t, []string{"calcService"}, r.Sources())
	methods, err := r.Methods("calcService")
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"Add", "Sub"}, methods)

	results, err := r.Invoke("calcService.Add", 2, 3)
	require.Nil(t, err)
	assert.Equal(t, 5, results[0])
	assert.Equal(t, 5, svc.last)
	results, err = r.Invoke("calcService.Sub", 10, 3)
	require.Nil(t, err)
	assert.Equal(t, 7, results[0])

	// Boom被排除, 不在分发表里
	_, err = r.Invoke("calcService.Boom")
	require.NotNil(t, err)
	assert.Equal(t, error2.MethodNotFound, err.Code())

	// 同名的源不能注册两次
	lErr := r.RegisterClass("calcService", &calcService{}, nil)
	require.NotNil(t, lErr)
	assert.Equal(t, error2.SourceAlreadyExists, lErr.Code())
}

func TestRegistryInvokeErrors(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	require.Nil(t, r.RegisterClass("Calc", &calcService{}, nil))

	_, err := r.Invoke("Calc.NoSuch", 1)
	require.NotNil(t, err)
	assert.Equal(t, error2.MethodNotFound, err.Code())

	_, err = r.Invoke("Calc.Add", "not-int", 2)
	require.NotNil(t, err)
	assert.Equal(t, error2.BadArguments, err.Code())

	_, err = r.Invoke("Calc.Boom")
	require.NotNil(t, err)
	assert.Equal(t, error2.CallPanicked, err.Code())
}

func TestRegistryInvokeCtx(t *testing.T) {
	type ctxKey struct{}
	r := newTestRegistry()
	defer r.Stop()
	require.Nil(t, r.Register("Ctx.Get", func(ctx context.Context) int {
		if v, ok := ctx.Value(ctxKey{}).(int); ok {
			return v
		}
		return -1
	}))
	ctx := context.WithValue(context.Background(), ctxKey{}, 99)
	results, err := r.InvokeCtx(ctx, "Ctx.Get")
	require.Nil(t, err)
	assert.Equal(t, 99, results[0])
	// Invoke路径自动补上Background
	results, err = r.Invoke("Ctx.Get")
	require.Nil(t, err)
	assert.Equal(t, -1, results[0])
}

func TestRegistryPlugin(t *testing.T) {
	p := &countingPlugin{}
	r := newTestRegistry(WithPlugin(p))
	defer r.Stop()
	svc := &calcService{}
	require.Nil(t, r.RegisterClass("Calc", svc, map[string]bool{"Boom": true}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.onBind))

	_, err := r.Invoke("Calc.Add", 1, 2)
	require.Nil(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.beforeCall))
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.afterCall))
	assert.Equal(t, int32(error2.Success), atomic.LoadInt32(&p.lastStatus))

	_, err = r.Invoke("Calc.Add", "x", 2)
	require.NotNil(t, err)
	assert.Equal(t, int32(error2.BadArguments), atomic.LoadInt32(&p.lastStatus))
}

func TestRegistryPluginDeny(t *testing.T) {
	r := newTestRegistry(WithPlugins(&denyPlugin{}))
	defer r.Stop()
	require.Nil(t, r.Register("Math.Add", func(a, b int) int { return a + b }))
	results, err := r.Invoke("Math.Add", 1, 2)
	assert.Nil(t, results)
	require.NotNil(t, err)
	assert.Equal(t, error2.PluginError, err.Code())
}

func TestRegistryAsyncInvoke(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	require.Nil(t, r.Register("Math.Add", func(a, b int) int { return a + b }))

	var wg sync.WaitGroup
	var sum int64
	const n = 64
	wg.Add(n)
	for i := 0; i < n; i++ {
		err := r.AsyncInvoke("Math.Add", []interface{}{i, 1}, func(results []interface{}, err error) {
			defer wg.Done()
			if err == nil {
				atomic.AddInt64(&sum, int64(results[0].(int)))
			}
		})
		require.Nil(t, err)
	}
	wg.Wait()
	// sum(1..n) = n*(n+1)/2
	assert.Equal(t, int64(n*(n+1)/2), atomic.LoadInt64(&sum))

	require.NotNil(t, r.AsyncInvoke("Math.Add", nil, nil))

	wg.Add(1)
	var asyncErr error
	require.Nil(t, r.AsyncInvoke("Math.NoSuch", nil, func(results []interface{}, err error) {
		defer wg.Done()
		asyncErr = err
	}))
	wg.Wait()
	require.NotNil(t, asyncErr)
}

func TestRegistryDeregister(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	require.Nil(t, r.Register("Math.Add", func(a, b int) int { return a + b }))
	r.Deregister("Math.Add")
	_, err := r.Invoke("Math.Add", 1, 2)
	require.NotNil(t, err)
	assert.Equal(t, error2.MethodNotFound, err.Code())
	assert.Equal(t, 0, len(r.Sources()))
}

func TestRegistryMethodTable(t *testing.T) {
	r := newTestRegistry()
	defer r.Stop()
	require.Nil(t, r.RegisterClass("Calc", &calcService{}, map[string]bool{"Boom": true}))
	mt, err := r.MethodTable("Calc")
	require.Nil(t, err)
	assert.Equal(t, "Calc", mt.SourceName)
	require.Equal(t, 2, len(mt.Methods))
	for _, desc := range mt.Methods {
		assert.Equal(t, "func(int, int) int", desc.SignatureText)
		assert.Equal(t, signature.Fingerprint(desc.SignatureText), desc.Identity)
		assert.Equal(t, delegate.KindBoundMethod.String(), desc.Kind)
		assert.False(t, desc.Variadic)
	}
	_, err = r.MethodTable("NoSuch")
	require.NotNil(t, err)
	assert.Equal(t, error2.MethodNotFound, err.Code())
}

// 固定池按key哈希派发, 同名过程的异步调用保持提交顺序
func TestRegistryAsyncFixedPool(t *testing.T) {
	r := newTestRegistry(
		WithExecPoolBuilder(pool.NewFixedPoolBuilder[string]()),
		WithExecPoolArgument(8, 8, 256),
	)
	defer r.Stop()
	var seq []int
	var mu sync.Mutex
	require.Nil(t, r.Register("Seq.Push", func(n int) int {
		mu.Lock()
		seq = append(seq, n)
		mu.Unlock()
		return n
	}))
	const n = 128
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		arg := i
		require.Nil(t, r.AsyncInvoke("Seq.Push", []interface{}{arg}, func([]interface{}, error) {
			wg.Done()
		}))
	}
	wg.Wait()
	require.Equal(t, n, len(seq))
	for i, v := range seq {
		assert.Equal(t, i, v)
	}
}

func TestRegistryStop(t *testing.T) {
	r := newTestRegistry()
	require.Nil(t, r.Register("Math.Add", func(a, b int) int { return a + b }))
	require.Nil(t, r.Stop())
	_, err := r.Invoke("Math.Add", 1, 2)
	require.NotNil(t, err)
	assert.Equal(t, error2.RegistryClosed, err.Code())
	lErr := r.Register("Math.Sub", func(a, b int) int { return a - b })
	require.NotNil(t, lErr)
	assert.Equal(t, error2.RegistryClosed, lErr.Code())
	assert.NotNil(t, r.Stop())
}
