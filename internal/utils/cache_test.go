package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache[string, uint64](4, time.Minute)
	require.NoError(t, err)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set("go", 7)
	v, ok := c.Get("go")
	assert.True(t, ok)
	assert.Equal(t, uint64(7), v)

	clock = clock.Add(2 * time.Minute)
	_, ok = c.Get("go")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheWithoutTTLEvictsBySize(t *testing.T) {
	c, err := NewCache[string, int](2, 0)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	c.Delete("c")
	_, ok = c.Get("c")
	assert.False(t, ok)
}
