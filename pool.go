package qhttpd

import (
	"net"
	"sync"
)

// pool holds the sync.Pools a Server's connection goroutines draw
// `*Request` and `*Responder` values from, sparing an allocation per
// message on a keep-alive connection.
type pool struct {
	requestPool   *sync.Pool
	responderPool *sync.Pool
}

func newPool() *pool {
	return &pool{
		requestPool: &sync.Pool{
			New: func() interface{} {
				return newRequest()
			},
		},
		responderPool: &sync.Pool{
			New: func() interface{} {
				return newResponder(nil)
			},
		},
	}
}

func (p *pool) Request() *Request {
	return p.requestPool.Get().(*Request)
}

func (p *pool) PutRequest(r *Request) {
	r.reset()
	p.requestPool.Put(r)
}

func (p *pool) Responder(conn net.Conn) *Responder {
	r := p.responderPool.Get().(*Responder)
	r.reset(conn)
	return r
}

func (p *pool) PutResponder(r *Responder) {
	p.responderPool.Put(r)
}
