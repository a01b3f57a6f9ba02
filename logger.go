package qhttpd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is the leveled logger a Server writes its own diagnostics
// through. Handlers are free to use it too.
type Logger struct {
	bufferPool *sync.Pool
	mutex      sync.Mutex
	enabled    bool

	Output io.Writer
}

// logLevel is the level a log entry was printed at.
type logLevel uint8

// Logger levels, in increasing severity.
const (
	lvlDebug logLevel = iota
	lvlInfo
	lvlWarn
	lvlError
)

func (l logLevel) String() string {
	switch l {
	case lvlDebug:
		return "DEBUG"
	case lvlInfo:
		return "INFO"
	case lvlWarn:
		return "WARN"
	case lvlError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// newLogger returns a Logger writing to os.Stderr, enabled per the
// Config's DebugMode.
func newLogger(enabled bool) *Logger {
	return &Logger{
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 256))
			},
		},
		enabled: enabled,
		Output:  os.Stderr,
	}
}

func (l *Logger) log(lvl logLevel, format string, args ...interface{}) {
	if !l.enabled && lvl < lvlWarn {
		return
	}

	buf := l.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer l.bufferPool.Put(buf)

	enc := json.NewEncoder(buf)
	entry := map[string]interface{}{
		"time":  time.Now().Format(time.RFC3339),
		"level": lvl.String(),
	}
	if format == "" {
		entry["message"] = fmt.Sprint(args...)
	} else {
		entry["message"] = fmt.Sprintf(format, args...)
	}
	if err := enc.Encode(entry); err != nil {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.Output.Write(buf.Bytes())
}

// Debug logs at debug level.
func (l *Logger) Debug(args ...interface{}) { l.log(lvlDebug, "", args...) }

// Debugf logs at debug level with a format string.
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(lvlDebug, format, args...) }

// Info logs at info level.
func (l *Logger) Info(args ...interface{}) { l.log(lvlInfo, "", args...) }

// Infof logs at info level with a format string.
func (l *Logger) Infof(format string, args ...interface{}) { l.log(lvlInfo, format, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(args ...interface{}) { l.log(lvlWarn, "", args...) }

// Warnf logs at warn level with a format string.
func (l *Logger) Warnf(format string, args ...interface{}) { l.log(lvlWarn, format, args...) }

// Error logs at error level.
func (l *Logger) Error(args ...interface{}) { l.log(lvlError, "", args...) }

// Errorf logs at error level with a format string.
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(lvlError, format, args...) }
