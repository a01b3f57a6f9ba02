package qhttpd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is a global set of configurations for a `Server`, loadable from
// a JSON, TOML or YAML file chosen by extension
type Config struct {
	// Address represents the TCP address the Server listens on by
	// default when no explicit address is passed to Listen. Default
	// value is "localhost:8080".
	Address string

	// ReadTimeout is a read timeout loaded from the config file. Default
	// value is "0". The Server does not apply it: connection reads have
	// no deadline.
	ReadTimeout time.Duration

	// WriteTimeout is a write timeout loaded from the config file.
	// Default value is "0". The Server does not apply it: response
	// writes have no deadline.
	WriteTimeout time.Duration

	// MaxHeaderBytes is a header-block size limit loaded from the config
	// file. Default value is 1 << 20. The connection pipeline does not
	// enforce it.
	MaxHeaderBytes int

	// RingBufferSize is a streaming buffer size loaded from the config
	// file. Default value is 512. A Responder does not read it; it always
	// relays a streamed body through a ringBufferSize (512) byte buffer.
	RingBufferSize int

	// WebSocketHandshakeTimeout is a handshake timeout loaded from the
	// config file. Default value is 10s. The Server does not read it; a
	// qws.Upgrader takes its own HandshakeTimeout.
	WebSocketHandshakeTimeout time.Duration

	// WebSocketSubprotocols is a subprotocol list loaded from the config
	// file. The Server does not read it; a qws.Upgrader takes its own
	// Subprotocols.
	WebSocketSubprotocols []string

	// DebugMode enables debug- and info-level entries in the Server's
	// Logger; warnings and errors are written either way. Default value
	// is "false".
	DebugMode bool

	// TLSCertFile and TLSKeyFile, when both set, cause Listen to
	// serve TLS instead of plaintext TCP.
	TLSCertFile string
	TLSKeyFile  string
}

// defaultConfig returns a Config populated with the library's defaults.
func defaultConfig() Config {
	return Config{
		Address:                   "localhost:8080",
		MaxHeaderBytes:            1 << 20,
		RingBufferSize:            ringBufferSize,
		WebSocketHandshakeTimeout: 10 * time.Second,
	}
}

// NewConfig returns a default Config, optionally overridden by the
// contents of a config file named path. The format is chosen from
// path's extension (.json, .toml, .yaml/.yml); any other extension, or
// a path that does not exist, leaves the defaults untouched.
func NewConfig(path string) (*Config, error) {
	c := defaultConfig()
	if path == "" {
		return &c, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &c, nil
		}
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	default:
		return &c, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}

	return &c, nil
}
