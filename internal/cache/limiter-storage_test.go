package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterStorage(t *testing.T) {
	s := NewLimiterStorage(2, time.Minute)

	v, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	buf := []byte("1")
	require.NoError(t, s.Set("10.0.0.1", buf, time.Second))
	buf[0] = '9'

	v, err = s.Get("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v, "stored values are copied")

	require.NoError(t, s.Set("10.0.0.2", []byte("2"), 0))
	require.NoError(t, s.Set("10.0.0.3", []byte("3"), 0))
	v, err = s.Get("10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, v, "oldest key is evicted at capacity")

	require.NoError(t, s.Delete("10.0.0.2"))
	v, _ = s.Get("10.0.0.2")
	assert.Nil(t, v)

	require.NoError(t, s.Reset())
	v, _ = s.Get("10.0.0.3")
	assert.Nil(t, v)
	assert.NoError(t, s.Close())
}
