package delegate

import (
	"testing"

	error2 "github.com/nyan233/littledelegate/core/protocol/error"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedFreeFunc(t *testing.T) {
	var d Delegate[func(int, int) int]
	assert.False(t, d.HasTarget())
	d.Bind(add)
	assert.True(t, d.HasTarget())
	assert.Equal(t, KindFreeFunc, d.Kind())
	assert.Equal(t, 7, d.Target()(3, 4))
	assert.True(t, d.TargetIs(add))
	assert.False(t, d.TargetIs(sub))
}

func TestFixedClosure(t *testing.T) {
	k := 5
	var d Delegate[func(int) int]
	d.Bind(func(x int) int { return x + k })
	assert.Equal(t, KindClosure, d.Kind())
	assert.Equal(t, 15, d.Target()(10))
}

func TestFixedSentinel(t *testing.T) {
	var d Delegate[func(int) int]
	sentinel := d.Target()
	require.NotNil(t, sentinel)
	defer func() {
		e := recover()
		require.NotNil(t, e)
		desc, ok := e.(perror.LErrorDesc)
		require.True(t, ok)
		assert.Equal(t, error2.DelegateNotBound, desc.Code())
	}()
	sentinel(1)
}

func TestFixedBindNilResets(t *testing.T) {
	var d Delegate[func(int, int) int]
	d.Bind(add)
	require.True(t, d.HasTarget())
	d.Bind(nil)
	assert.False(t, d.HasTarget())
	assert.Equal(t, KindInvalid, d.Kind())
}

func TestFixedBindMethod(t *testing.T) {
	c := &counter{}
	var d Delegate[func(int) int]
	require.Nil(t, d.BindMethod(c, "Incr"))
	assert.Equal(t, KindBoundMethod, d.Kind())
	assert.Equal(t, 3, d.Target()(3))
	assert.Equal(t, 3, c.n)
	assert.True(t, d.TargetIs(c.Incr))
	assert.False(t, d.TargetIs((&counter{}).Incr))

	var mismatch Delegate[func(string) string]
	err := mismatch.BindMethod(c, "Incr")
	require.NotNil(t, err)
	assert.Equal(t, error2.SignatureMismatch, err.Code())
	err = d.BindMethod(c, "NoSuchMethod")
	require.NotNil(t, err)
	assert.Equal(t, error2.MethodNotFound, err.Code())
}

func TestFixedAssign(t *testing.T) {
	var src Dynamic
	require.Nil(t, src.Bind(add))
	var d Delegate[func(int, int) int]
	require.Nil(t, d.Assign(&src))
	assert.Equal(t, 4, d.Target()(1, 3))
	assert.Equal(t, d.Identity(), src.Identity())

	// 指纹不一致的赋值被拒绝且不触碰现有绑定
	var other Dynamic
	require.Nil(t, other.Bind(func(s string) string { return s }))
	err := d.Assign(&other)
	require.NotNil(t, err)
	assert.Equal(t, error2.SignatureMismatch, err.Code())
	assert.True(t, d.TargetIs(add))

	var unbound Dynamic
	err = d.Assign(&unbound)
	require.NotNil(t, err)
	assert.Equal(t, error2.DelegateNotBound, err.Code())
}

func TestFixedEqual(t *testing.T) {
	var d1, d2 Delegate[func(int, int) int]
	assert.True(t, d1.Equal(&d2))
	d1.Bind(add)
	assert.False(t, d1.Equal(&d2))
	d2.Bind(add)
	assert.True(t, d1.Equal(&d2))
	d2.Bind(sub)
	assert.False(t, d1.Equal(&d2))
	d1.Reset()
	d2.Reset()
	assert.True(t, d1.Equal(&d2))
}

func TestFixedIdentity(t *testing.T) {
	var d Delegate[func(int, int) int]
	// 指纹由类型参数决定, 与是否绑定无关
	unboundID := d.Identity()
	d.Bind(add)
	assert.Equal(t, unboundID, d.Identity())
	assert.Equal(t, "func(int, int) int", d.Signature().String())
}

func TestFixedNonFuncTypeParam(t *testing.T) {
	var d Delegate[int]
	assert.Panics(t, func() {
		_ = d.Target()
	})
}

func TestAssignTo(t *testing.T) {
	var src Dynamic
	require.Nil(t, src.Bind(add))
	var dst Delegate[func(int, int) int]
	require.Nil(t, AssignTo(&src, &dst))
	assert.Equal(t, 9, dst.Target()(4, 5))
}
