package qws

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhttpd/qhttpd"
)

func TestToHTTPRequestCarriesMethodAndHeaders(t *testing.T) {
	req := &qhttpd.Request{
		Method:     qhttpd.MethodGet,
		Proto:      "HTTP/1.1",
		RemoteAddr: "127.0.0.1:5555",
		URL:        &qhttpd.URL{Host: "example.com", Path: "/chat", Query: "room=1"},
	}
	req.Header = newHeaderWith(map[string]string{
		"Connection": "Upgrade",
		"Upgrade":    "websocket",
	})

	ur := &qhttpd.UpgradeRequest{Conn: nil, Request: req}

	httpReq, err := toHTTPRequest(ur)
	require.NoError(t, err)
	assert.Equal(t, "GET", httpReq.Method)
	assert.Equal(t, "/chat", httpReq.URL.Path)
	assert.Equal(t, "room=1", httpReq.URL.RawQuery)
	assert.Equal(t, "websocket", httpReq.Header.Get("Upgrade"))
}

func TestUpgradeRejectsNilRequest(t *testing.T) {
	u := Upgrader{}
	_, err := u.Upgrade(nil, nil)
	assert.Error(t, err)

	_, err = u.Upgrade(&qhttpd.UpgradeRequest{}, nil)
	assert.Error(t, err)
}

func TestPrefixReaderReplaysPendingBeforeConn(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		client.Write([]byte("-live-"))
	}()

	pr := &prefixReader{pending: []byte("pending"), conn: server}

	buf := make([]byte, 7)
	n, err := pr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "pending", string(buf[:n]))

	buf2 := make([]byte, 6)
	n2, err := io.ReadFull(pr, buf2)
	require.NoError(t, err)
	assert.Equal(t, "-live-", string(buf2[:n2]))
}

func newHeaderWith(kv map[string]string) qhttpd.Header {
	h := qhttpd.Header{}
	for k, v := range kv {
		h.Set(k, v)
	}
	return h
}
