package qhttpd

import (
	"strconv"
	"strings"

	"github.com/qhttpd/qhttpd/internal/httpparse"
)

// Method is the HTTP request method.
type Method int

// Request methods recognized by the router and parser.
const (
	MethodUnknown Method = iota
	MethodGet
	MethodPut
	MethodDelete
	MethodPost
	MethodHead
	MethodOptions
	MethodPatch
)

// String returns the wire representation of m.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	case MethodPost:
		return "POST"
	case MethodHead:
		return "HEAD"
	case MethodOptions:
		return "OPTIONS"
	case MethodPatch:
		return "PATCH"
	default:
		return "UNKNOWN"
	}
}

func parseMethod(s string) Method {
	switch s {
	case "GET":
		return MethodGet
	case "PUT":
		return MethodPut
	case "DELETE":
		return MethodDelete
	case "POST":
		return MethodPost
	case "HEAD":
		return MethodHead
	case "OPTIONS":
		return MethodOptions
	case "PATCH":
		return MethodPatch
	default:
		return MethodUnknown
	}
}

// MethodMask is a bitset over `Method`, used by a `Rule` to accept more
// than one method. `MaskAll` accepts any recognized method.
type MethodMask uint8

// Method bits, and the mask that matches every recognized method.
const (
	MaskGet MethodMask = 1 << iota
	MaskPut
	MaskDelete
	MaskPost
	MaskHead
	MaskOptions
	MaskPatch

	MaskAll = MaskGet | MaskPut | MaskDelete | MaskPost | MaskHead |
		MaskOptions | MaskPatch
)

func (m Method) mask() MethodMask {
	switch m {
	case MethodGet:
		return MaskGet
	case MethodPut:
		return MaskPut
	case MethodDelete:
		return MaskDelete
	case MethodPost:
		return MaskPost
	case MethodHead:
		return MaskHead
	case MethodOptions:
		return MaskOptions
	case MethodPatch:
		return MaskPatch
	default:
		return 0
	}
}

// ParseMethodMask parses a pipe-separated method list (e.g. "GET|POST")
// or the literal "All" into a `MethodMask`.
func ParseMethodMask(s string) MethodMask {
	if strings.EqualFold(s, "All") {
		return MaskAll
	}

	var mask MethodMask
	for _, part := range strings.Split(s, "|") {
		mask |= parseMethod(strings.ToUpper(strings.TrimSpace(part))).mask()
	}
	return mask
}

// ParseState mirrors httpparse.State, re-exported on `Request` so that
// embedders never need to import the internal parser package.
type ParseState = httpparse.State

// Request is an HTTP request, immutable once its ParseState reaches
// StateMessageComplete.
type Request struct {
	Method     Method
	URL        *URL
	Proto      string
	Header     Header
	Body       []byte
	State      ParseState
	RemoteAddr string

	// PathParams holds the raw captured path-parameter text bound by
	// the router for the matched rule, keyed by position. Coercion to
	// the handler's parameter types happens in the Route* adapters.
	PathParams []string
}

// newRequest returns a zeroed Request ready for its first parse.
func newRequest() *Request {
	return &Request{Header: newHeader()}
}

// reset clears the Request in place for reuse on the next message of
// the same connection, without allocating a new Header map.
func (r *Request) reset() {
	r.Method = MethodUnknown
	r.URL = nil
	r.Proto = ""
	r.Header.reset()
	r.Body = r.Body[:0]
	r.State = httpparse.StateMessageBegin
	r.PathParams = r.PathParams[:0]
}

// HeaderValue returns the value of the named header, or "" if absent.
func (r *Request) HeaderValue(name string) string {
	return r.Header.Value(name)
}

// ContentLength parses the Content-Length header, returning -1 if it is
// absent or malformed.
func (r *Request) ContentLength() int64 {
	v, ok := r.Header.Get("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// setScheme fills the URL scheme from whether the underlying socket
// reports itself as encrypted.
func (r *Request) setScheme(encrypted bool) {
	if r.URL == nil {
		return
	}
	if encrypted {
		r.URL.Scheme = "https"
	} else {
		r.URL.Scheme = "http"
	}
}
