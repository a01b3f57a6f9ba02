package qhttpd

import (
	"strconv"
)

// Handler is the core dispatch signature every registered route is
// ultimately adapted to. Everything in this file exists to let a caller
// register something more convenient than this and have it bound here.
type Handler func(*Request, *Responder)

// PathParam constrains the concrete Go types a path placeholder may be
// bound to. Rather than one hand-written binder per (arity x type)
// combination, a single generic function parameterized over PathParam
// does the coercion; a failed coercion is treated as a route miss and
// answered with 404.
type PathParam interface {
	~int | ~int64 | ~uint | ~uint64 | ~float64 | ~string
}

// parsePathParam coerces s, the captured text of a path placeholder,
// into T. A failed coercion is reported to the caller as a boolean, not
// an error, because treats it as a route-not-matched
// condition (the caller responds 404) rather than a handler error.
func parsePathParam[T PathParam](s string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case int:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(int(n)).(T), true
	case int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(n).(T), true
	case uint:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(uint(n)).(T), true
	case uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(n).(T), true
	case float64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return zero, false
		}
		return any(n).(T), true
	case string:
		return any(s).(T), true
	default:
		return zero, false
	}
}

// converterNameFor returns the built-in converter name matching T, used
// by the Route* registration functions to pick the regex fragment the
// router's converter registry should capture for a given placeholder's
// type.
func converterNameFor[T PathParam]() string {
	var zero T
	switch any(zero).(type) {
	case int, int64:
		return "int"
	case uint, uint64:
		return "uint"
	case float64:
		return "double"
	default:
		return "string"
	}
}

func respond(resp Response, err error, r *Responder) {
	if err != nil {
		r.WriteResponse(TextResponse(err.Error(), 500))
		return
	}
	r.WriteResponse(resp)
}

// Route0 registers a handler taking no path parameters.
func Route0[R any](router *Router, mask MethodMask, pattern string, fn func() R) error {
	return router.addRule(mask, pattern, nil, func(req *Request, resp *Responder) {
		r, err := asResponse(fn())
		respond(r, err, resp)
	})
}

// Route0Req registers a no-path-parameter handler that also receives
// the inbound Request.
func Route0Req[R any](router *Router, mask MethodMask, pattern string, fn func(*Request) R) error {
	return router.addRule(mask, pattern, nil, func(req *Request, resp *Responder) {
		r, err := asResponse(fn(req))
		respond(r, err, resp)
	})
}

// Route1 registers a handler taking one typed path parameter.
func Route1[T1 PathParam, R any](router *Router, mask MethodMask, pattern string, fn func(T1) R) error {
	return router.addRule(mask, pattern, []string{converterNameFor[T1]()}, func(req *Request, resp *Responder) {
		p1, ok := parsePathParam[T1](req.PathParams[0])
		if !ok {
			resp.WriteStatus(404)
			return
		}
		r, err := asResponse(fn(p1))
		respond(r, err, resp)
	})
}

// Route1Req registers a one-path-parameter handler that also receives
// the inbound Request.
func Route1Req[T1 PathParam, R any](router *Router, mask MethodMask, pattern string, fn func(*Request, T1) R) error {
	return router.addRule(mask, pattern, []string{converterNameFor[T1]()}, func(req *Request, resp *Responder) {
		p1, ok := parsePathParam[T1](req.PathParams[0])
		if !ok {
			resp.WriteStatus(404)
			return
		}
		r, err := asResponse(fn(req, p1))
		respond(r, err, resp)
	})
}

// Route2 registers a handler taking two typed path parameters.
func Route2[T1, T2 PathParam, R any](router *Router, mask MethodMask, pattern string, fn func(T1, T2) R) error {
	return router.addRule(mask, pattern, []string{converterNameFor[T1](), converterNameFor[T2]()}, func(req *Request, resp *Responder) {
		p1, ok1 := parsePathParam[T1](req.PathParams[0])
		p2, ok2 := parsePathParam[T2](req.PathParams[1])
		if !ok1 || !ok2 {
			resp.WriteStatus(404)
			return
		}
		r, err := asResponse(fn(p1, p2))
		respond(r, err, resp)
	})
}

// Route2Req registers a two-path-parameter handler that also receives
// the inbound Request.
func Route2Req[T1, T2 PathParam, R any](router *Router, mask MethodMask, pattern string, fn func(*Request, T1, T2) R) error {
	return router.addRule(mask, pattern, []string{converterNameFor[T1](), converterNameFor[T2]()}, func(req *Request, resp *Responder) {
		p1, ok1 := parsePathParam[T1](req.PathParams[0])
		p2, ok2 := parsePathParam[T2](req.PathParams[1])
		if !ok1 || !ok2 {
			resp.WriteStatus(404)
			return
		}
		r, err := asResponse(fn(req, p1, p2))
		respond(r, err, resp)
	})
}

// Route3 registers a handler taking three typed path parameters.
func Route3[T1, T2, T3 PathParam, R any](router *Router, mask MethodMask, pattern string, fn func(T1, T2, T3) R) error {
	return router.addRule(mask, pattern, []string{converterNameFor[T1](), converterNameFor[T2](), converterNameFor[T3]()}, func(req *Request, resp *Responder) {
		p1, ok1 := parsePathParam[T1](req.PathParams[0])
		p2, ok2 := parsePathParam[T2](req.PathParams[1])
		p3, ok3 := parsePathParam[T3](req.PathParams[2])
		if !ok1 || !ok2 || !ok3 {
			resp.WriteStatus(404)
			return
		}
		r, err := asResponse(fn(p1, p2, p3))
		respond(r, err, resp)
	})
}

// RouteResponder registers a handler that takes full control of the
// Responder directly, for streaming bodies or manual header control.
func RouteResponder(router *Router, mask MethodMask, pattern string, fn func(*Request, *Responder)) error {
	return router.addRule(mask, pattern, nil, fn)
}
