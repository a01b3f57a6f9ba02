package qhttpd

import (
	"net"
	"time"
)

// listener wraps a `*net.TCPListener` to enable TCP keep-alive on every
// accepted connection. PROXY-protocol support is intentionally not
// carried over: it has no bearing on this server's scope.
type listener struct {
	*net.TCPListener
}

// listen listens on the TCP network address.
func listen(address string) (*listener, error) {
	nl, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &listener{TCPListener: nl.(*net.TCPListener)}, nil
}

// Accept implements `net.Listener`, enabling keep-alive on the accepted
// connection before handing it back.
func (l *listener) Accept() (net.Conn, error) {
	tc, err := l.AcceptTCP()
	if err != nil {
		return nil, err
	}

	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)

	return tc, nil
}
