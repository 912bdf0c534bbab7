package signature

import (
	"reflect"
	"testing"

	error2 "github.com/nyan233/littledelegate/core/protocol/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseProbe struct {
	Payload []byte
}

func TestParseRoundTrip(t *testing.T) {
	RegisterType(&parseProbe{})
	corpus := []interface{}{
		func() {},
		func(int, string) error { return nil },
		func() (int, error) { return 0, nil },
		func(string, ...int) int { return 0 },
		func(*int, bool, int) {},
		func(map[string][]int, *parseProbe) (bool, error) { return false, nil },
		func(func(int) error, [4]byte) error { return nil },
		func(chan int, <-chan string, chan<- bool) {},
		func(interface{}, error) {},
		func(parseProbe) *parseProbe { return nil },
	}
	for _, fn := range corpus {
		typ := reflect.TypeOf(fn)
		text := Render(typ)
		sig, err := Parse(text)
		require.Nil(t, err, "parse %q", text)
		// 解析重建的类型与来源类型是同一个运行时类型
		assert.Equal(t, typ, sig.Type(), "parse %q", text)
		assert.Equal(t, text, sig.String())
		assert.Equal(t, Fingerprint(text), sig.Identity())
	}
}

func TestParseParamNames(t *testing.T) {
	named, err := Parse("func(x int, y int) int")
	require.Nil(t, err)
	assert.Equal(t, "x", named.In(0).Name)
	assert.Equal(t, "y", named.In(1).Name)
	plain, err := Parse("func(int, int) int")
	require.Nil(t, err)
	assert.Equal(t, "", plain.In(0).Name)
	// 参数名不影响指纹
	assert.Equal(t, plain.Identity(), named.Identity())
	assert.True(t, plain.Equal(named))
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"notfunc(int)",
		"func(int",
		"func() (int, error",
		"func(no.SuchType) error",
		"func(, int)",
		"func(...int, string)",
		"func(map[func()]int)",
	}
	for _, text := range cases {
		sig, err := Parse(text)
		require.NotNil(t, err, "parse %q", text)
		assert.Nil(t, sig)
		assert.Equal(t, error2.ParseSignatureErr, err.Code(), "parse %q", text)
	}
}

func TestRegisterType(t *testing.T) {
	type inner struct{ N int }
	_, err := Parse("func(signature.inner) error")
	require.NotNil(t, err)
	RegisterType(inner{})
	sig, err := Parse("func(signature.inner) error")
	require.Nil(t, err)
	assert.Equal(t, reflect.TypeOf(inner{}), sig.In(0).Type)
	// 指针样本同时登记指针与元素类型
	type outer struct{ S string }
	RegisterType(&outer{})
	sig, err = Parse("func(*signature.outer, signature.outer)")
	require.Nil(t, err)
	assert.Equal(t, ParamPointer, sig.In(0).Class)
	assert.Equal(t, ParamValue, sig.In(1).Class)
}
