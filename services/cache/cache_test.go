package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("profile:10:shows", []byte(`[]`))

	got, ok := c.Get("profile:10:shows")
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), got)

	_, ok = c.Get("profile:11:shows")
	assert.False(t, ok)
}

func TestInvalidatePattern(t *testing.T) {
	c := New(time.Minute)
	c.Set("profile:10:shows", []byte(`a`))
	c.Set("profile:11:shows", []byte(`b`))
	c.Set("profile:10:movies", []byte(`c`))

	c.Invalidate("profile:*:shows")

	_, ok := c.Get("profile:10:shows")
	assert.False(t, ok)
	_, ok = c.Get("profile:11:shows")
	assert.False(t, ok)
	_, ok = c.Get("profile:10:movies")
	assert.True(t, ok, "movies aggregate survives a shows invalidation")
}

func TestInvalidateSingleProfile(t *testing.T) {
	c := New(time.Minute)
	c.Set("profile:10:shows", []byte(`a`))
	c.Set("profile:10:movies", []byte(`b`))
	c.Set("profile:11:shows", []byte(`c`))

	c.Invalidate("profile:10:*")

	_, ok := c.Get("profile:10:shows")
	assert.False(t, ok)
	_, ok = c.Get("profile:10:movies")
	assert.False(t, ok)
	_, ok = c.Get("profile:11:shows")
	assert.True(t, ok)
}

func TestInvalidateBadPatternIsHarmless(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", []byte(`v`))

	c.Invalidate("[") // malformed glob

	_, ok := c.Get("k")
	assert.True(t, ok)
}
