package dump

import (
	"bytes"
	"testing"

	"github.com/nyan233/littledelegate/core/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpOnBadArguments(t *testing.T) {
	var buf bytes.Buffer
	r := registry.New(
		registry.WithOpenLogger(false),
		registry.WithPlugin(New(&buf)),
	)
	defer r.Stop()
	require.Nil(t, r.Register("Math.Add", func(a, b int) int { return a + b }))

	// 成功的调用不产生倾倒
	_, err := r.Invoke("Math.Add", 1, 2)
	require.Nil(t, err)
	assert.Equal(t, 0, buf.Len())

	_, err = r.Invoke("Math.Add", "x", 2)
	require.NotNil(t, err)
	out := buf.String()
	assert.Contains(t, out, "--- Math.Add ---")
	assert.Contains(t, out, "args:")
	assert.Contains(t, out, `"x"`)
	assert.Contains(t, out, "error:")
}

func TestDumpVerbose(t *testing.T) {
	var buf bytes.Buffer
	r := registry.New(
		registry.WithOpenLogger(false),
		registry.WithPlugin(NewVerbose(&buf)),
	)
	defer r.Stop()
	require.Nil(t, r.Register("Math.Add", func(a, b int) int { return a + b }))
	_, err := r.Invoke("Math.Add", 1, 2)
	require.Nil(t, err)
	out := buf.String()
	assert.Contains(t, out, "--- Math.Add ---")
	assert.Contains(t, out, "results:")
	assert.NotContains(t, out, "error:")
}
