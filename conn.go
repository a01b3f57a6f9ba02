package qhttpd

import (
	"net"
	"strings"

	"github.com/qhttpd/qhttpd/internal/httpparse"
)

// UpgradeRequest is the hand-off contract a connection pipeline places
// on a Server's upgrade channel when a request asks to switch
// protocols. The qhttpd core recognizes the handshake far enough to
// know a request is not an ordinary HTTP exchange, but implementing the
// WebSocket protocol itself is out of scope for the core: everything
// needed to complete it by hand (or via a bridge package such as qws)
// is captured here instead.
type UpgradeRequest struct {
	Conn    net.Conn
	Request *Request

	// Unconsumed holds any bytes already read off Conn past the
	// request's terminating CRLF, which a protocol implementation
	// must treat as already received.
	Unconsumed []byte
}

// serveConn runs the read/parse/dispatch pipeline for one accepted
// connection. It is the idiomatic-Go rendering of QAbstractHttpServer's
// readyRead-driven, single-threaded per-connection state machine: one
// goroutine blocks on Read and drives the parser forward, instead of an
// event loop resuming a stored continuation.
func (s *Server) serveConn(conn net.Conn) {
	handedOff := false
	defer func() {
		if !handedOff {
			conn.Close()
		}
	}()

	req := s.pool.Request()
	defer s.pool.PutRequest(req)

	resp := s.pool.Responder(conn)
	defer s.pool.PutResponder(resp)

	var headerName string
	var upgrading bool

	p := httpparse.New(httpparse.Callbacks{
		OnMessageBegin: func() {
			req.reset()
		},
		OnURL: func(method, target, proto string) error {
			req.Method = parseMethod(method)
			req.URL = parseRequestTarget(target)
			req.Proto = proto
			return nil
		},
		OnHeaderField: func(name string) {
			headerName = name
		},
		OnHeaderValue: func(value string) {
			req.Header.Set(headerName, value)
			if strings.EqualFold(headerName, "Host") {
				req.URL.setAuthority(value)
			}
		},
		OnHeadersComplete: func() error {
			req.setScheme(s.tlsEnabled())
			if isUpgradeRequest(req) {
				upgrading = true
			}
			return nil
		},
		OnBody: func(b []byte) {
			req.Body = append(req.Body, b...)
		},
		OnMessageComplete: func() {
			req.State = httpparse.StateMessageComplete
		},
	})

	req.RemoteAddr = conn.RemoteAddr().String()

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if perr := p.Execute(buf[:n]); perr != nil {
				resp.reset(conn)
				resp.WriteStatus(400)
				return
			}
		}

		if upgrading {
			handedOff = s.handoffUpgrade(conn, req, p.Unconsumed())
			return
		}

		if req.State == httpparse.StateMessageComplete {
			s.router.dispatch(s, req, resp)
			if !keepAlive(req) {
				return
			}

			resp.reset(conn)
			p.Reset()
			req.reset()

			// A pipelined request may already be sitting in the
			// parser's buffer; keep draining without blocking on
			// Read again until it runs dry.
			for {
				if perr := p.Execute(nil); perr != nil {
					resp.WriteStatus(400)
					return
				}
				if upgrading {
					handedOff = s.handoffUpgrade(conn, req, p.Unconsumed())
					return
				}
				if req.State != httpparse.StateMessageComplete {
					break
				}
				s.router.dispatch(s, req, resp)
				if !keepAlive(req) {
					return
				}
				resp.reset(conn)
				p.Reset()
				req.reset()
			}
		}

		if err != nil {
			return
		}
	}
}

// dispatch matches req against the router and runs the matched handler,
// falling back to the server's missing/method-not-allowed handling.
func (router *Router) dispatch(s *Server, req *Request, resp *Responder) {
	h, params, methodMismatch := router.match(req.Method, normalizePath(req.URL.Path))
	if h == nil {
		if methodMismatch {
			resp.WriteStatus(405)
			return
		}
		s.missingHandler()(req, resp)
		return
	}
	req.PathParams = params
	h(req, resp)
}

func isUpgradeRequest(req *Request) bool {
	return strings.EqualFold(req.HeaderValue("Connection"), "Upgrade") &&
		strings.EqualFold(req.HeaderValue("Upgrade"), "websocket")
}

func keepAlive(req *Request) bool {
	switch strings.ToLower(req.HeaderValue("Connection")) {
	case "close":
		return false
	case "keep-alive":
		return true
	default:
		return req.Proto == "HTTP/1.1"
	}
}

// handoffUpgrade publishes the handshake on the server's upgrade
// channel. req is copied because the caller's pooled Request is reset
// and returned to the pool as soon as serveConn returns. It reports
// whether the hand-off was accepted; serveConn closes conn itself when
// it is not, rather than leaving a socket nobody owns anymore half-open.
func (s *Server) handoffUpgrade(conn net.Conn, req *Request, unconsumed []byte) bool {
	if !s.upgradesUsed.Load() {
		s.logger.Warn("qhttpd: upgrade requested with no consumer subscribed, disconnecting")
		return false
	}

	pending := make([]byte, len(unconsumed))
	copy(pending, unconsumed)

	reqCopy := *req
	reqCopy.PathParams = append([]string(nil), req.PathParams...)
	reqCopy.Body = append([]byte(nil), req.Body...)
	reqCopy.Header = req.Header.clone()

	ur := &UpgradeRequest{Conn: conn, Request: &reqCopy, Unconsumed: pending}
	select {
	case s.upgrades <- ur:
		return true
	default:
		s.logger.Warn("qhttpd: upgrade channel full, disconnecting")
		return false
	}
}
