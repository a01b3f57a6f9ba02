package qhttpd

import (
	"bytes"
	"encoding/json"
	"encoding/xml"

	"github.com/BurntSushi/toml"
	"github.com/aofei/mimesniffer"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Response is the value object a handler may return in place of writing
// through its `Responder` directly. It is exclusively owned by the
// handler-result path until a `Responder` consumes it.
type Response struct {
	MimeType string
	Body     []byte
	Status   int
}

// mimeEmpty is the mime-type a status-only response carries.
const mimeEmpty = "application/x-empty"

// StatusResponse builds a status-only Response with no body.
func StatusResponse(status int) Response {
	return Response{MimeType: mimeEmpty, Status: status}
}

// TextResponse builds a "text/plain" Response from s.
func TextResponse(s string, status int) Response {
	return Response{MimeType: "text/plain; charset=utf-8", Body: []byte(s), Status: status}
}

// HTMLResponse builds a "text/html" Response from h.
func HTMLResponse(h string, status int) Response {
	return Response{MimeType: "text/html; charset=utf-8", Body: []byte(h), Status: status}
}

// JSONResponse builds an "application/json" Response by encoding v.
func JSONResponse(v interface{}, status int) (Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{MimeType: "application/json; charset=utf-8", Body: b, Status: status}, nil
}

// XMLResponse builds an "application/xml" Response by encoding v.
func XMLResponse(v interface{}, status int) (Response, error) {
	b, err := xml.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{MimeType: "application/xml; charset=utf-8", Body: b, Status: status}, nil
}

// TOMLResponse builds an "application/toml" Response by encoding v.
func TOMLResponse(v interface{}, status int) (Response, error) {
	buf := bytes.Buffer{}
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return Response{}, err
	}
	return Response{MimeType: "application/toml; charset=utf-8", Body: buf.Bytes(), Status: status}, nil
}

// YAMLResponse builds an "application/yaml" Response by encoding v.
func YAMLResponse(v interface{}, status int) (Response, error) {
	buf := bytes.Buffer{}
	if err := yaml.NewEncoder(&buf).Encode(v); err != nil {
		return Response{}, err
	}
	return Response{MimeType: "application/yaml; charset=utf-8", Body: buf.Bytes(), Status: status}, nil
}

// MsgpackResponse builds an "application/msgpack" Response by encoding v.
func MsgpackResponse(v interface{}, status int) (Response, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{MimeType: "application/msgpack", Body: b, Status: status}, nil
}

// ProtobufResponse builds an "application/protobuf" Response by encoding
// the protobuf message v.
func ProtobufResponse(v proto.Message, status int) (Response, error) {
	b, err := proto.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{MimeType: "application/protobuf", Body: b, Status: status}, nil
}

// BytesResponse builds a Response from an arbitrary byte buffer, MIME
// sniffed from its content unless mime is given explicitly.
func BytesResponse(b []byte, mime string, status int) Response {
	if mime == "" {
		mime = mimesniffer.Sniff(b)
	}
	return Response{MimeType: mime, Body: b, Status: status}
}

// asResponse adapts an arbitrary handler return value into a `Response`
// for the Route* functions in handler.go: a Response passes through
// unchanged, an error becomes a 500, a string or []byte becomes its
// corresponding body with a 200, and anything else is marshaled as JSON.
func asResponse(v interface{}) (Response, error) {
	switch t := v.(type) {
	case Response:
		return t, nil
	case error:
		if t == nil {
			return StatusResponse(200), nil
		}
		return TextResponse(t.Error(), 500), nil
	case string:
		return TextResponse(t, 200), nil
	case []byte:
		return BytesResponse(t, "", 200), nil
	case nil:
		return StatusResponse(200), nil
	default:
		return JSONResponse(v, 200)
	}
}
