// Package httpparse is the byte-level HTTP/1.x request parser driven by
// the connection pipeline. It is kept internal because it is an
// implementation detail of a higher-level component rather than part of
// the embedding surface.
package httpparse

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// State is the parser's position in the message lifecycle, also carried
// on a `Request` as its ParseState.
type State int

// Parser states, in the order a message normally passes through them.
const (
	StateMessageBegin State = iota
	StateURL
	StateHeaders
	StateHeadersComplete
	StateBody
	StateChunkHeader
	StateChunkComplete
	StateMessageComplete
)

// ErrMalformed is returned by Execute when the bytes fed to it do not
// form a valid HTTP/1.x message.
var ErrMalformed = errors.New("httpparse: malformed HTTP message")

// Callbacks is the set of hooks the parser driver invokes as it
// recognizes each part of a message. Any of them may be nil.
type Callbacks struct {
	OnMessageBegin    func()
	OnURL             func(method, target, proto string) error
	OnHeaderField     func(name string)
	OnHeaderValue     func(value string)
	OnHeadersComplete func() error
	OnBody            func(p []byte)
	OnMessageComplete func()
	OnChunkHeader     func(size int)
	OnChunkComplete   func()
}

// Parser is one instance of the incremental HTTP/1.x scanner, one per
// connection, fed by successive, possibly-partial byte slices. It owns
// its own accumulation buffer, so a caller never needs to track how much
// of a given read was consumed: it feeds whatever came off the wire and
// inspects State() and Unconsumed() afterward.
type Parser struct {
	cb Callbacks

	state State

	pending         []byte // bytes accumulated across Execute calls, not yet parsed
	contentLength   int64
	haveLength      bool
	chunked         bool
	bodyRemaining   int64
	chunkRemaining  int64
	readingTrailers bool
}

// New returns a Parser that invokes cb as it recognizes message parts.
func New(cb Callbacks) *Parser {
	return &Parser{cb: cb, state: StateMessageBegin}
}

// Reset prepares the parser to scan a new message on the same
// connection, as happens for every request after the first on a
// keep-alive socket. Unconsumed bytes belonging to the next message are
// left in place.
func (p *Parser) Reset() {
	p.state = StateMessageBegin
	p.contentLength = 0
	p.haveLength = false
	p.chunked = false
	p.bodyRemaining = 0
	p.chunkRemaining = 0
	p.readingTrailers = false
}

// State reports the parser's current position in the message lifecycle.
func (p *Parser) State() State {
	return p.state
}

// Unconsumed returns the bytes given to Execute that have not yet been
// parsed. When State() == StateMessageComplete these belong to the next
// pipelined message (or to an upgrade payload that must be handed off
// verbatim).
func (p *Parser) Unconsumed() []byte {
	return p.pending
}

// Execute feeds data to the parser, appending it to any bytes left over
// from a previous call. It drives the state machine as far forward as
// the available bytes allow and returns an error only for malformed
// input — running out of bytes mid-message is not an error, it is the
// normal "wait for more" signal, reported by State() staying short of
// StateMessageComplete.
func (p *Parser) Execute(data []byte) error {
	if len(data) > 0 {
		p.pending = append(p.pending, data...)
	}

	for {
		switch p.state {
		case StateMessageBegin, StateURL:
			line, rest, ok := cutLine(p.pending)
			if !ok {
				return nil
			}

			if p.state == StateMessageBegin && p.cb.OnMessageBegin != nil {
				p.cb.OnMessageBegin()
			}

			method, target, proto, err := parseRequestLine(line)
			if err != nil {
				return ErrMalformed
			}

			if p.cb.OnURL != nil {
				if err := p.cb.OnURL(method, target, proto); err != nil {
					return err
				}
			}

			p.pending = rest
			p.state = StateHeaders

		case StateHeaders:
			line, rest, ok := cutLine(p.pending)
			if !ok {
				return nil
			}
			p.pending = rest

			if len(line) == 0 {
				p.state = StateHeadersComplete
				continue
			}

			name, value, err := parseHeaderLine(line)
			if err != nil {
				return ErrMalformed
			}

			if p.cb.OnHeaderField != nil {
				p.cb.OnHeaderField(name)
			}
			if p.cb.OnHeaderValue != nil {
				p.cb.OnHeaderValue(value)
			}

			switch strings.ToLower(name) {
			case "content-length":
				n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
				if err != nil || n < 0 {
					return ErrMalformed
				}
				p.contentLength = n
				p.haveLength = true
			case "transfer-encoding":
				if strings.Contains(strings.ToLower(value), "chunked") {
					p.chunked = true
				}
			}

		case StateHeadersComplete:
			if p.readingTrailers {
				p.state = StateMessageComplete
				continue
			}

			if p.cb.OnHeadersComplete != nil {
				if err := p.cb.OnHeadersComplete(); err != nil {
					return err
				}
			}

			switch {
			case p.chunked:
				p.state = StateChunkHeader
			case p.haveLength && p.contentLength > 0:
				p.bodyRemaining = p.contentLength
				p.state = StateBody
			default:
				p.state = StateMessageComplete
			}

		case StateBody:
			if p.bodyRemaining == 0 {
				p.state = StateMessageComplete
				continue
			}

			n := int64(len(p.pending))
			if n > p.bodyRemaining {
				n = p.bodyRemaining
			}
			if n == 0 {
				return nil
			}

			if p.cb.OnBody != nil {
				p.cb.OnBody(p.pending[:n])
			}
			p.pending = p.pending[n:]
			p.bodyRemaining -= n

			if p.bodyRemaining != 0 {
				return nil
			}
			p.state = StateMessageComplete

		case StateChunkHeader:
			line, rest, ok := cutLine(p.pending)
			if !ok {
				return nil
			}

			sizeStr := line
			if i := bytes.IndexByte(line, ';'); i >= 0 {
				sizeStr = line[:i]
			}

			size, err := strconv.ParseInt(strings.TrimSpace(string(sizeStr)), 16, 64)
			if err != nil || size < 0 {
				return ErrMalformed
			}

			p.pending = rest
			p.chunkRemaining = size

			if p.cb.OnChunkHeader != nil {
				p.cb.OnChunkHeader(int(size))
			}

			if size == 0 {
				p.readingTrailers = true
				p.state = StateHeaders
			} else {
				p.state = StateChunkComplete
			}

		case StateChunkComplete:
			n := int64(len(p.pending))
			if n > p.chunkRemaining {
				n = p.chunkRemaining
			}

			if n > 0 {
				if p.cb.OnBody != nil {
					p.cb.OnBody(p.pending[:n])
				}
				p.pending = p.pending[n:]
				p.chunkRemaining -= n
			}

			if p.chunkRemaining > 0 {
				return nil
			}

			// Consume the trailing CRLF after the chunk data.
			if len(p.pending) < 2 {
				return nil
			}
			if p.pending[0] != '\r' || p.pending[1] != '\n' {
				return ErrMalformed
			}
			p.pending = p.pending[2:]

			if p.cb.OnChunkComplete != nil {
				p.cb.OnChunkComplete()
			}

			p.state = StateChunkHeader

		case StateMessageComplete:
			if p.cb.OnMessageComplete != nil {
				p.cb.OnMessageComplete()
			}
			return nil
		}
	}
}

// cutLine splits off one CRLF-terminated line from the front of b. It
// reports ok=false if no full line is yet available.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	i := bytes.Index(b, []byte("\r\n"))
	if i < 0 {
		return nil, b, false
	}
	return b[:i], b[i+2:], true
}

func parseRequestLine(line []byte) (method, target, proto string, err error) {
	parts := strings.SplitN(string(line), " ", 3)
	if len(parts) != 3 {
		return "", "", "", ErrMalformed
	}
	if !httpguts.ValidMethod(parts[0]) {
		return "", "", "", ErrMalformed
	}
	return parts[0], parts[1], parts[2], nil
}

func parseHeaderLine(line []byte) (name, value string, err error) {
	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return "", "", ErrMalformed
	}
	name = string(line[:i])
	value = strings.TrimSpace(string(line[i+1:]))

	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		return "", "", ErrMalformed
	}

	return name, value, nil
}
