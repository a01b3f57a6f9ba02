package qhttpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(r *Request, resp *Responder) {}

func TestRouterMatchesLiteralPath(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/hello", nil, noopHandler))

	h, params, mismatch := router.match(MethodGet, "/hello")
	assert.NotNil(t, h)
	assert.False(t, mismatch)
	assert.Empty(t, params)
}

func TestRouterCapturesTypedPlaceholders(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/items/<id>", []string{"int"}, noopHandler))

	h, params, mismatch := router.match(MethodGet, "/items/42")
	assert.NotNil(t, h)
	assert.False(t, mismatch)
	assert.Equal(t, []string{"42"}, params)
}

func TestRouterUintConverterRejectsNegative(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/items/<id>", []string{"uint"}, noopHandler))

	h, _, mismatch := router.match(MethodGet, "/items/-5")
	assert.Nil(t, h)
	assert.False(t, mismatch)
}

func TestRouterMethodMismatchReports405(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/hello", nil, noopHandler))

	h, _, mismatch := router.match(MethodPost, "/hello")
	assert.Nil(t, h)
	assert.True(t, mismatch)
}

func TestRouterNoMatchDoesNotReportMismatch(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/hello", nil, noopHandler))

	h, _, mismatch := router.match(MethodGet, "/nope")
	assert.Nil(t, h)
	assert.False(t, mismatch)
}

func TestRouterFirstMatchWins(t *testing.T) {
	router := NewRouter()
	var hitFirst, hitSecond bool
	first := func(r *Request, resp *Responder) { hitFirst = true }
	second := func(r *Request, resp *Responder) { hitSecond = true }

	require.NoError(t, router.addRule(MaskGet, "/items/<id>", []string{"string"}, first))
	require.NoError(t, router.addRule(MaskGet, "/items/<id>", []string{"string"}, second))

	h, _, _ := router.match(MethodGet, "/items/x")
	h(nil, nil)
	assert.True(t, hitFirst)
	assert.False(t, hitSecond)
}

func TestRouterAddConverterAfterRuleAddedPanics(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/hello", nil, noopHandler))

	assert.Panics(t, func() {
		router.AddConverter("custom", `[a-z]+`)
	})
}

func TestRouterCustomConverter(t *testing.T) {
	router := NewRouter()
	router.AddConverter("slug", `[a-z0-9-]+`)
	require.NoError(t, router.addRule(MaskGet, "/posts/<slug>", []string{"slug"}, noopHandler))

	h, params, _ := router.match(MethodGet, "/posts/hello-world")
	assert.NotNil(t, h)
	assert.Equal(t, []string{"hello-world"}, params)
}

func TestRouterClearConvertersRemovesBuiltins(t *testing.T) {
	router := NewRouter()
	router.ClearConverters()

	err := router.addRule(MaskGet, "/items/<id>", []string{"int"}, noopHandler)
	assert.Error(t, err)
}

func TestRouterTrailingSlashGetsImplicitArg(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/page/", []string{"int"}, noopHandler))

	h, params, mismatch := router.match(MethodGet, "/page/-10")
	assert.NotNil(t, h)
	assert.False(t, mismatch)
	assert.Equal(t, []string{"-10"}, params)
}

func TestRouterTrailingSlashAfterExplicitPlaceholder(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.addRule(MaskGet, "/api/v<arg>/user/", []string{"double", "uint"}, noopHandler))

	h, params, mismatch := router.match(MethodGet, "/api/v5.1/user/10")
	assert.NotNil(t, h)
	assert.False(t, mismatch)
	assert.Equal(t, []string{"5.1", "10"}, params)
}

func TestRouterArityMismatchRejectsRule(t *testing.T) {
	router := NewRouter()

	err := router.addRule(MaskGet, "/items/<id>", []string{"int", "string"}, noopHandler)
	assert.Error(t, err)

	err = router.addRule(MaskGet, "/items/<id>/<name>", []string{"int"}, noopHandler)
	assert.Error(t, err)
}

func TestNormalizePathStripsTrailingSlashExceptRoot(t *testing.T) {
	assert.Equal(t, "/a/b", normalizePath("/a/b/"))
	assert.Equal(t, "/", normalizePath("/"))
}
