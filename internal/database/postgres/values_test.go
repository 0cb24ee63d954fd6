package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignValue(t *testing.T) {
	now := time.Now()

	t.Run("any destination takes everything", func(t *testing.T) {
		var v any
		require.NoError(t, assignValue(&v, int64(7)))
		assert.Equal(t, int64(7), v)

		require.NoError(t, assignValue(&v, nil))
		assert.Nil(t, v)
	})

	t.Run("integer widths", func(t *testing.T) {
		var i64 int64
		require.NoError(t, assignValue(&i64, int32(9)))
		assert.Equal(t, int64(9), i64)

		var i int
		require.NoError(t, assignValue(&i, int64(12)))
		assert.Equal(t, 12, i)

		var i32 int32
		require.NoError(t, assignValue(&i32, int16(3)))
		assert.Equal(t, int32(3), i32)
	})

	t.Run("common scalar types", func(t *testing.T) {
		var s string
		require.NoError(t, assignValue(&s, "hello"))
		assert.Equal(t, "hello", s)

		var b bool
		require.NoError(t, assignValue(&b, true))
		assert.True(t, b)

		var f float64
		require.NoError(t, assignValue(&f, float32(1.5)))
		assert.Equal(t, 1.5, f)

		var ts time.Time
		require.NoError(t, assignValue(&ts, now))
		assert.Equal(t, now, ts)

		var raw []byte
		require.NoError(t, assignValue(&raw, []byte{1, 2}))
		assert.Equal(t, []byte{1, 2}, raw)
	})

	t.Run("null into typed destination", func(t *testing.T) {
		var s string
		err := assignValue(&s, nil)
		require.Error(t, err)
	})

	t.Run("type mismatch", func(t *testing.T) {
		var b bool
		err := assignValue(&b, "yes")
		require.Error(t, err)
	})

	t.Run("unsupported destination", func(t *testing.T) {
		var c complex128
		err := assignValue(&c, int64(1))
		require.Error(t, err)
	})
}
