package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGetExpire(t *testing.T) {
	c := NewCache(time.Hour)
	defer c.Stop()

	c.Set("a", []byte("1"), time.Minute)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	c.Set("b", []byte("2"), -time.Second)
	_, ok = c.Get("b")
	assert.False(t, ok)

	c.evictExpired()
	assert.Equal(t, 1, c.Len())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCache_DeletePrefix(t *testing.T) {
	c := NewCache(time.Hour)
	defer c.Stop()

	c.Set("bilemo:clients:1", []byte("x"), time.Minute)
	c.Set("bilemo:clients:2", []byte("x"), time.Minute)
	c.Set("bilemo:products:1", []byte("x"), time.Minute)

	assert.Equal(t, 2, c.DeletePrefix("bilemo:clients:"))
	assert.Equal(t, 1, c.Len())

	c.Stop()
	c.Stop()
}
