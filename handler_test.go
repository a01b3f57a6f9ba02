package qhttpd

import (
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchAndCapture(t *testing.T, h Handler, req *Request) []byte {
	t.Helper()
	client, server := net.Pipe()

	done := make(chan []byte, 1)
	go func() {
		b, _ := io.ReadAll(client)
		done <- b
	}()

	resp := newResponder(server)
	h(req, resp)
	server.Close()

	return <-done
}

func TestRoute0DispatchesWithNoParams(t *testing.T) {
	router := NewRouter()
	require.NoError(t, Route0(router, MaskGet, "/ping", func() string { return "pong" }))

	h, params, mismatch := router.match(MethodGet, "/ping")
	require.NotNil(t, h)
	assert.False(t, mismatch)
	assert.Empty(t, params)

	out := dispatchAndCapture(t, h, &Request{})
	assert.True(t, strings.HasSuffix(string(out), "pong"))
}

func TestRoute1CoercesIntPathParam(t *testing.T) {
	router := NewRouter()
	var got int
	require.NoError(t, Route1(router, MaskGet, "/items/<id>", func(id int) string {
		got = id
		return "ok"
	}))

	h, params, _ := router.match(MethodGet, "/items/-7")
	require.NotNil(t, h)

	dispatchAndCapture(t, h, &Request{PathParams: params})
	assert.Equal(t, -7, got)
}

func TestRoute1UintNegativeNeverMatches(t *testing.T) {
	router := NewRouter()
	require.NoError(t, Route1(router, MaskGet, "/items/<id>", func(id uint) string {
		return "ok"
	}))

	// the uint converter only accepts digit sequences, so a negative id
	// fails the rule's regex and never reaches the handler.
	h, _, mismatch := router.match(MethodGet, "/items/-7")
	assert.Nil(t, h)
	assert.False(t, mismatch)
}

func TestRoute2RejectsFractionalUint(t *testing.T) {
	router := NewRouter()
	require.NoError(t, Route2(router, MaskGet, "/box/<w>/<h>", func(w float64, h uint64) string {
		return "ok"
	}))

	h, params, _ := router.match(MethodGet, "/box/5./6.0")
	assert.Nil(t, h, "expected the uint converter to reject a fractional value, got params=%v", params)
}

func TestRoute2CoercesFloatAndUintValid(t *testing.T) {
	router := NewRouter()
	var gotF float64
	var gotU uint64
	require.NoError(t, Route2(router, MaskGet, "/box/<w>/<h>", func(w float64, h uint64) string {
		gotF, gotU = w, h
		return "ok"
	}))

	h, params, mismatch := router.match(MethodGet, "/box/5.5/6")
	require.NotNil(t, h)
	assert.False(t, mismatch)

	dispatchAndCapture(t, h, &Request{PathParams: params})
	assert.Equal(t, 5.5, gotF)
	assert.EqualValues(t, 6, gotU)
}

func TestRouteResponderGetsRawResponder(t *testing.T) {
	router := NewRouter()
	require.NoError(t, RouteResponder(router, MaskGet, "/raw", func(req *Request, resp *Responder) {
		resp.WriteStatus(204)
	}))

	h, _, _ := router.match(MethodGet, "/raw")
	out := dispatchAndCapture(t, h, &Request{})
	assert.True(t, strings.HasPrefix(string(out), "HTTP/1.1 204"))
}
