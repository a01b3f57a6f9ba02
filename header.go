package qhttpd

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// headerEntry is one header occupying a slot in a `Header` map. The name
// keeps its original casing as received on the wire; lookups are always
// done through the lowercased-name hash.
type headerEntry struct {
	name  string
	value string
}

// Header is the header mapping carried by a `Request` or built by a
// `Responder`. It is keyed by an xxhash of the lowercased header name so
// that a hash collision between two distinctly-cased names is resolved by
// last-write-wins on insertion order,.
type Header struct {
	entries map[uint64]headerEntry
}

// newHeader returns an empty `Header`.
func newHeader() Header {
	return Header{entries: make(map[uint64]headerEntry, 8)}
}

// reset clears the h for reuse, keeping its backing map.
func (h *Header) reset() {
	for k := range h.entries {
		delete(h.entries, k)
	}
}

func headerKey(name string) uint64 {
	return xxhash.Sum64String(strings.ToLower(name))
}

// Set inserts or overwrites the value associated with name. The name's
// original casing is preserved for `Names`/wire output.
func (h *Header) Set(name, value string) {
	if h.entries == nil {
		h.entries = make(map[uint64]headerEntry, 8)
	}
	h.entries[headerKey(name)] = headerEntry{name: name, value: value}
}

// Get returns the value associated with name (case-insensitive) and
// whether it was present.
func (h Header) Get(name string) (string, bool) {
	e, ok := h.entries[headerKey(name)]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Value is a convenience over `Get` that returns "" for a missing header.
func (h Header) Value(name string) string {
	v, _ := h.Get(name)
	return v
}

// Has reports whether name is present (case-insensitive).
func (h Header) Has(name string) bool {
	_, ok := h.entries[headerKey(name)]
	return ok
}

// Del removes the header named name, if present.
func (h *Header) Del(name string) {
	delete(h.entries, headerKey(name))
}

// Len returns the number of distinct headers carried by h.
func (h Header) Len() int {
	return len(h.entries)
}

// Each calls fn once per header, in no particular order, with the
// originally-cased name and its value.
func (h Header) Each(fn func(name, value string)) {
	for _, e := range h.entries {
		fn(e.name, e.value)
	}
}

// clone returns an independent copy of h, used when a Request outlives
// the pooled value it was parsed into (e.g. a protocol-upgrade hand-off).
func (h Header) clone() Header {
	c := newHeader()
	for k, e := range h.entries {
		c.entries[k] = e
	}
	return c
}
