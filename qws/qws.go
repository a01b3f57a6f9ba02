// Package qws bridges a qhttpd UpgradeRequest hand-off into a full
// WebSocket connection using gorilla/websocket. qhttpd's core recognizes
// an upgrade handshake far enough to hand off the raw connection but
// never implements the WebSocket protocol itself; this package is the
// reference bridge that does.
package qws

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qhttpd/qhttpd"
)

// Peer wraps an established WebSocket connection, exposing a handler
// field per message/control type rather than a single dispatch loop.
type Peer struct {
	TextHandler            func(text string) error
	BinaryHandler          func(b []byte) error
	ConnectionCloseHandler func(statusCode int, reason string) error
	PingHandler            func(appData string) error
	PongHandler            func(appData string) error
	ErrorHandler           func(err error)

	conn   *websocket.Conn
	closed bool
}

// Upgrader holds the handshake parameters used to complete an
// UpgradeRequest, mirroring gorilla/websocket.Upgrader's own fields.
type Upgrader struct {
	HandshakeTimeout time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
	Subprotocols     []string
	CheckOrigin      func(r *http.Request) bool
}

// Upgrade completes the WebSocket handshake begun by the qhttpd core's
// hand-off, returning a Peer ready to exchange messages.
func (u Upgrader) Upgrade(ur *qhttpd.UpgradeRequest, responseHeader http.Header) (*Peer, error) {
	if ur == nil || ur.Conn == nil || ur.Request == nil {
		return nil, errors.New("qws: nil upgrade request")
	}

	httpReq, err := toHTTPRequest(ur)
	if err != nil {
		return nil, err
	}

	hj := &hijackShim{conn: ur.Conn, pending: ur.Unconsumed}

	upgrader := websocket.Upgrader{
		HandshakeTimeout: u.HandshakeTimeout,
		ReadBufferSize:   u.ReadBufferSize,
		WriteBufferSize:  u.WriteBufferSize,
		Subprotocols:     u.Subprotocols,
		CheckOrigin:      u.CheckOrigin,
	}

	conn, err := upgrader.Upgrade(hj, httpReq, responseHeader)
	if err != nil {
		return nil, err
	}

	return &Peer{conn: conn}, nil
}

// toHTTPRequest adapts the qhttpd Request carried by an UpgradeRequest
// into a *http.Request, the shape gorilla/websocket.Upgrader expects.
func toHTTPRequest(ur *qhttpd.UpgradeRequest) (*http.Request, error) {
	req := ur.Request

	header := http.Header{}
	req.Header.Each(func(name, value string) {
		header.Add(name, value)
	})

	httpReq := &http.Request{
		Method:     req.Method.String(),
		Proto:      req.Proto,
		Header:     header,
		Host:       req.URL.Host,
		RemoteAddr: req.RemoteAddr,
		URL:        &url.URL{Path: req.URL.Path, RawQuery: req.URL.Query},
	}
	return httpReq, nil
}

// Close closes the underlying connection without sending a close frame.
func (p *Peer) Close() error {
	p.closed = true
	return p.conn.Close()
}

// WriteText writes a text message.
func (p *Peer) WriteText(text string) error {
	return p.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// WriteBinary writes a binary message.
func (p *Peer) WriteBinary(b []byte) error {
	return p.conn.WriteMessage(websocket.BinaryMessage, b)
}

// WriteConnectionClose writes a close frame with statusCode and reason.
func (p *Peer) WriteConnectionClose(statusCode int, reason string) error {
	return p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(statusCode, reason))
}

// WritePing writes a ping frame.
func (p *Peer) WritePing(appData string) error {
	return p.conn.WriteMessage(websocket.PingMessage, []byte(appData))
}

// WritePong writes a pong frame.
func (p *Peer) WritePong(appData string) error {
	return p.conn.WriteMessage(websocket.PongMessage, []byte(appData))
}

// Serve runs the read loop, dispatching to the Peer's *Handler fields
// until the connection closes.
func (p *Peer) Serve() error {
	if p.PingHandler != nil {
		p.conn.SetPingHandler(func(appData string) error { return p.PingHandler(appData) })
	}
	if p.PongHandler != nil {
		p.conn.SetPongHandler(func(appData string) error { return p.PongHandler(appData) })
	}
	if p.ConnectionCloseHandler != nil {
		p.conn.SetCloseHandler(func(code int, text string) error {
			return p.ConnectionCloseHandler(code, text)
		})
	}

	for {
		mt, data, err := p.conn.ReadMessage()
		if err != nil {
			if p.ErrorHandler != nil && !p.closed {
				p.ErrorHandler(err)
			}
			return err
		}

		switch mt {
		case websocket.TextMessage:
			if p.TextHandler != nil {
				if err := p.TextHandler(string(data)); err != nil {
					return err
				}
			}
		case websocket.BinaryMessage:
			if p.BinaryHandler != nil {
				if err := p.BinaryHandler(data); err != nil {
					return err
				}
			}
		}
	}
}

// hijackShim implements http.ResponseWriter and http.Hijacker over an
// already-accepted net.Conn, the minimum gorilla/websocket.Upgrader
// needs to complete its handshake directly against qhttpd's hand-off
// instead of through an *http.Server.
type hijackShim struct {
	conn    net.Conn
	pending []byte
	header  http.Header
	status  int
}

func (h *hijackShim) Header() http.Header {
	if h.header == nil {
		h.header = http.Header{}
	}
	return h.header
}

func (h *hijackShim) Write(b []byte) (int, error) {
	return h.conn.Write(b)
}

func (h *hijackShim) WriteHeader(status int) {
	h.status = status
}

func (h *hijackShim) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	var r io.Reader = h.conn
	if len(h.pending) > 0 {
		r = &prefixReader{pending: h.pending, conn: h.conn}
	}
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(h.conn)
	return h.conn, bufio.NewReadWriter(br, bw), nil
}

// prefixReader replays bytes already read off a connection (the
// UpgradeRequest's Unconsumed buffer) before falling through to the
// live connection, so the handshake sees exactly the bytes the qhttpd
// core had not yet consumed.
type prefixReader struct {
	pending []byte
	conn    net.Conn
}

func (r *prefixReader) Read(p []byte) (int, error) {
	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}
	return r.conn.Read(p)
}

