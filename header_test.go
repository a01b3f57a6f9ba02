package qhttpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderSetGet(t *testing.T) {
	h := newHeader()
	h.Set("Content-Type", "text/plain")

	v, ok := h.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
}

func TestHeaderOverwritePreservesLastValue(t *testing.T) {
	h := newHeader()
	h.Set("X-Test", "one")
	h.Set("x-test", "two")

	assert.Equal(t, "two", h.Value("X-TEST"))
	assert.Equal(t, 1, h.Len())
}

func TestHeaderDel(t *testing.T) {
	h := newHeader()
	h.Set("X-Test", "one")
	h.Del("x-test")

	assert.False(t, h.Has("X-Test"))
}

func TestHeaderReset(t *testing.T) {
	h := newHeader()
	h.Set("X-Test", "one")
	h.reset()

	assert.Equal(t, 0, h.Len())
}

func TestHeaderClonePreservesOriginalOnMutation(t *testing.T) {
	h := newHeader()
	h.Set("X-Test", "one")

	c := h.clone()
	h.Set("X-Test", "two")
	h.Del("X-Other")

	assert.Equal(t, "one", c.Value("X-Test"))
}

func TestHeaderEachVisitsAllEntries(t *testing.T) {
	h := newHeader()
	h.Set("A", "1")
	h.Set("B", "2")

	seen := map[string]string{}
	h.Each(func(name, value string) {
		seen[name] = value
	})

	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, seen)
}
