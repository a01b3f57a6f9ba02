package qhttpd

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
)

// Server is the embeddable HTTP/1.x server core. Unlike `net/http.Server`,
// it never owns the transport it wasn't given and never forces a
// particular request lifecycle on its caller: embedders call Listen or
// Bind directly on whichever `net.Listener`s they like, and a `Server`
// simply drives the connections that come off them.
type Server struct {
	Config Config

	router *Router
	pool   *pool
	logger *Logger

	listeners    []*listener
	externalLsnr []net.Listener
	upgrades     chan *UpgradeRequest
	upgradesUsed atomic.Bool

	mu            sync.Mutex
	wg            sync.WaitGroup
	closing       bool
	shutdownJobs  []func()
	missing       Handler
	tlsConfigured bool
}

// New returns a Server configured by cfg. A nil cfg uses the library
// defaults.
func New(cfg *Config) *Server {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}

	s := &Server{
		Config:   c,
		router:   NewRouter(),
		pool:     newPool(),
		logger:   newLogger(c.DebugMode),
		upgrades: make(chan *UpgradeRequest, 64),
	}
	s.missing = func(req *Request, resp *Responder) {
		resp.WriteResponse(TextResponse("Not Found", 404))
	}
	s.tlsConfigured = c.TLSCertFile != "" && c.TLSKeyFile != ""
	return s
}

// Router returns the Server's Router, for registering rules with
// AddConverter or the Route* functions in handler.go.
func (s *Server) Router() *Router {
	return s.router
}

// Logger returns the Server's Logger.
func (s *Server) Logger() *Logger {
	return s.logger
}

// Upgrades returns the channel a WebSocket (or other protocol-switch)
// bridge should read UpgradeRequests from. Calling it marks the server
// as having a consumer; a connection pipeline that sees no consumer
// registered disconnects an upgrade attempt instead of buffering it
// indefinitely.
func (s *Server) Upgrades() <-chan *UpgradeRequest {
	s.upgradesUsed.Store(true)
	return s.upgrades
}

// MissingHandler overrides the handler run when no rule matches a
// request. The default responds 404 with a plain-text body.
func (s *Server) MissingHandler(h Handler) {
	s.missing = h
}

func (s *Server) missingHandler() Handler {
	return s.missing
}

func (s *Server) tlsEnabled() bool {
	return s.tlsConfigured
}

// Listen opens a TCP listener on address (or Config.Address if address
// is ""), wraps it for keep-alive, and begins accepting connections in
// the background. It returns once the listener is bound; it does not
// block for the life of the server, matching QAbstractHttpServer's
// listen() returning immediately to its caller's own event loop.
func (s *Server) Listen(address string) error {
	if address == "" {
		address = s.Config.Address
	}

	l, err := listen(address)
	if err != nil {
		return err
	}

	if s.tlsConfigured {
		cert, err := tls.LoadX509KeyPair(s.Config.TLSCertFile, s.Config.TLSKeyFile)
		if err != nil {
			l.Close()
			return err
		}
		tlsListener := tls.NewListener(l, &tls.Config{Certificates: []tls.Certificate{cert}})
		s.bindExternal(tlsListener)
		return nil
	}

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	s.serve(l)
	return nil
}

// Bind adopts an already-constructed net.Listener (e.g. one obtained
// from systemd socket activation, or a test's net.Listen), serving
// connections from it the same way Listen does for its own. A Server
// may Bind any number of listeners; each is served independently.
func (s *Server) Bind(l net.Listener) {
	s.bindExternal(l)
}

func (s *Server) bindExternal(l net.Listener) {
	s.mu.Lock()
	s.externalLsnr = append(s.externalLsnr, l)
	s.mu.Unlock()

	s.serve(l)
}

func (s *Server) serve(l net.Listener) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := l.Accept()
			if err != nil {
				s.mu.Lock()
				closing := s.closing
				s.mu.Unlock()
				if closing {
					return
				}
				s.logger.Errorf("qhttpd: accept: %v", err)
				return
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.serveConn(conn)
			}()
		}
	}()
}

// Servers returns the addresses of every listener the Server is
// currently serving, both its own (via Listen) and adopted ones (via
// Bind).
func (s *Server) Servers() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs := make([]net.Addr, 0, len(s.listeners)+len(s.externalLsnr))
	for _, l := range s.listeners {
		addrs = append(addrs, l.Addr())
	}
	for _, l := range s.externalLsnr {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

// AddShutdownJob registers fn to run during Shutdown, after listeners
// stop accepting but before Shutdown waits for in-flight connections to
// finish.
func (s *Server) AddShutdownJob(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownJobs = append(s.shutdownJobs, fn)
}

// Shutdown stops accepting new connections, closes every listener, runs
// the registered shutdown jobs, then waits for in-flight connections to
// finish or ctx to expire, whichever comes first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	for _, l := range s.listeners {
		l.Close()
	}
	for _, l := range s.externalLsnr {
		l.Close()
	}
	jobs := s.shutdownJobs
	s.mu.Unlock()

	for _, job := range jobs {
		job()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
