// Package logger is a small leveled logger with printf-style messages, a
// prefix and key/value fields. Lines are written as text or as JSON objects.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown names map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Format selects the line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a name to a Format. Anything but "json" is text.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

const timeLayout = "2006-01-02 15:04:05.000"

// sink is shared by a logger and everything derived from it, so lines from
// sibling loggers never interleave.
type sink struct {
	mu       sync.Mutex
	out      io.Writer
	format   Format
	colorize bool
}

// Logger is a structured logger with level support. Derived loggers are
// cheap copies that share the parent's output.
type Logger struct {
	sink   *sink
	level  Level
	prefix string
	fields map[string]any
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sets the output destination.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.sink.out = w
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

// WithPrefix sets a prefix for log messages.
func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = prefix
	}
}

// WithColors enables or disables colorized level names in text output.
func WithColors(enabled bool) Option {
	return func(l *Logger) {
		l.sink.colorize = enabled
	}
}

// WithFormat selects text or JSON lines.
func WithFormat(f Format) Option {
	return func(l *Logger) {
		l.sink.format = f
	}
}

// New creates a new Logger with the given options.
func New(opts ...Option) *Logger {
	l := &Logger{
		sink:   &sink{out: os.Stdout, format: FormatText, colorize: true},
		level:  INFO,
		fields: map[string]any{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger = New()

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

func (l *Logger) derive(prefix string, extra map[string]any) *Logger {
	fields := l.fields
	if len(extra) > 0 {
		fields = make(map[string]any, len(l.fields)+len(extra))
		for k, v := range l.fields {
			fields[k] = v
		}
		for k, v := range extra {
			fields[k] = v
		}
	}
	return &Logger{sink: l.sink, level: l.level, prefix: prefix, fields: fields}
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.prefix, map[string]any{key: value})
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.derive(l.prefix, fields)
}

// WithPrefix returns a new logger with the given prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return l.derive(prefix, nil)
}

// entry is one line before encoding.
type entry struct {
	time    time.Time
	level   Level
	prefix  string
	caller  string
	message string
	fields  map[string]any
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}

	e := entry{
		time:    time.Now(),
		level:   level,
		prefix:  l.prefix,
		message: msg,
		fields:  l.fields,
	}
	if len(args) > 0 {
		e.message = fmt.Sprintf(msg, args...)
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		e.caller = fmt.Sprintf("%s:%d", file, line)
	}

	var line string
	if l.sink.format == FormatJSON {
		line = encodeJSON(e)
	} else {
		line = encodeText(e, l.sink.colorize)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, line)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encodeText renders "time LEVEL [prefix] [file:line] message k=v ...".
// Fields are written in key order.
func encodeText(e entry, color bool) string {
	var sb strings.Builder
	sb.WriteString(e.time.Format(timeLayout))
	sb.WriteString(" ")
	if color {
		sb.WriteString(colorize(e.level))
	} else {
		fmt.Fprintf(&sb, "%-5s", e.level.String())
	}
	sb.WriteString(" ")

	if e.prefix != "" {
		sb.WriteString("[" + e.prefix + "] ")
	}
	if e.caller != "" {
		sb.WriteString("[" + e.caller + "] ")
	}
	sb.WriteString(e.message)

	for _, k := range sortedKeys(e.fields) {
		fmt.Fprintf(&sb, " %s=%v", k, e.fields[k])
	}
	sb.WriteString("\n")
	return sb.String()
}

// encodeJSON renders one object per line. Fields sit beside the fixed keys
// and never replace them.
func encodeJSON(e entry) string {
	obj := make(map[string]any, len(e.fields)+5)
	for k, v := range e.fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		obj[k] = v
	}
	obj["time"] = e.time.Format(time.RFC3339Nano)
	obj["level"] = e.level.String()
	obj["msg"] = e.message
	if e.prefix != "" {
		obj["prefix"] = e.prefix
	}
	if e.caller != "" {
		obj["caller"] = e.caller
	}

	data, err := sonic.ConfigStd.Marshal(obj)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","msg":%q}`+"\n", "log encode: "+err.Error())
	}
	return string(data) + "\n"
}

func colorize(level Level) string {
	var color string
	switch level {
	case DEBUG:
		color = "\033[36m" // Cyan
	case INFO:
		color = "\033[32m" // Green
	case WARN:
		color = "\033[33m" // Yellow
	case ERROR:
		color = "\033[31m" // Red
	default:
		color = "\033[0m"
	}
	return fmt.Sprintf("%s%-5s\033[0m", color, level.String())
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(ERROR, msg, args...)
}

// Level returns the minimum level this logger writes.
func (l *Logger) Level() Level {
	return l.level
}

// Package-level functions that use the default logger.

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

type ctxKey struct{}

// FromContext returns the logger from the context, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// NewContext returns a new context with the given logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
