package qhttpd

import (
	"bytes"
	"strings"
)

// URL is a parsed HTTP request URL. Unlike `net/url.URL`, parsing is
// tolerant of a bare space in the path (encoded as "%20" on the wire so
// the request-line scanner never sees a literal space), mirroring
// QHttpServerRequest's TolerantMode parsing of the URL.
type URL struct {
	Scheme   string
	UserInfo string
	Host     string
	Port     string
	Path     string
	Query    string
	Fragment string
}

// parseRequestTarget parses the request-target of a request-line (the
// second token of "METHOD target HTTP/x.y") into a `URL`. Only the path,
// query and fragment are populated; Host is filled in later from the
// Host header, and Scheme from the connection's encryption status.
func parseRequestTarget(target string) *URL {
	u := &URL{Path: "/"}

	if i := strings.IndexByte(target, '#'); i >= 0 {
		u.Fragment = target[i+1:]
		target = target[:i]
	}

	if i := strings.IndexByte(target, '?'); i >= 0 {
		u.Query = target[i+1:]
		target = target[:i]
	}

	// Tolerate bare spaces, which a strict parser would reject.
	target = strings.ReplaceAll(target, " ", "%20")

	if target == "" {
		target = "/"
	}

	u.Path = target

	return u
}

// setAuthority parses the value of a Host header into Host and Port.
func (u *URL) setAuthority(value string) {
	value = strings.TrimSpace(value)
	if at := strings.LastIndexByte(value, '@'); at >= 0 {
		u.UserInfo = value[:at]
		value = value[at+1:]
	}

	if strings.HasPrefix(value, "[") {
		// IPv6 literal, optionally followed by ":port".
		if end := strings.IndexByte(value, ']'); end >= 0 {
			u.Host = value[:end+1]
			rest := value[end+1:]
			if strings.HasPrefix(rest, ":") {
				u.Port = rest[1:]
			}
			return
		}
	}

	if i := strings.LastIndexByte(value, ':'); i >= 0 {
		u.Host, u.Port = value[:i], value[i+1:]
		return
	}

	u.Host = value
}

// String reassembles the url into its wire form.
func (u *URL) String() string {
	buf := bytes.Buffer{}

	if u.Scheme != "" {
		buf.WriteString(u.Scheme)
		buf.WriteString("://")
		if u.UserInfo != "" {
			buf.WriteString(u.UserInfo)
			buf.WriteByte('@')
		}
		buf.WriteString(u.Host)
		if u.Port != "" {
			buf.WriteByte(':')
			buf.WriteString(u.Port)
		}
	}

	if u.Path == "" {
		buf.WriteByte('/')
	} else {
		buf.WriteString(u.Path)
	}

	if u.Query != "" {
		buf.WriteByte('?')
		buf.WriteString(u.Query)
	}

	if u.Fragment != "" {
		buf.WriteByte('#')
		buf.WriteString(u.Fragment)
	}

	return buf.String()
}
