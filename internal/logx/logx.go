// Package logx provides structured logging for kernelgen based on slog.
//
// Overview:
//   - Responsibility: Leveled key-value logging with logfmt/JSON output and sorted fields
//   - Key Types: Logger interface, slog-backed implementation, Options for configuration
//   - Concurrency Model: All loggers are safe for concurrent use
//   - Error Semantics: No errors returned; write failures are dropped
//   - Performance Notes: One buffered write per record
//
// Usage:
//
//	logger := logx.New(logx.WithFormat(logx.FormatLogfmt), logx.WithLevel(slog.LevelDebug))
//	logger.Info("wrote", logx.Str("path", "RayleighInteract.hh"), logx.Int("bytes", 812))
package logx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger defines a structured logging interface compatible with slog concepts.
// Implementations must be safe for concurrent use.
type Logger interface {
	// With returns a new Logger with the given key-value pairs attached.
	With(kv ...any) Logger

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, kv ...any)

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, kv ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, kv ...any)

	// Error logs an error message with the error and optional key-value pairs.
	Error(err error, msg string, kv ...any)
}

// Str creates a string key-value pair for structured logging.
func Str(k, v string) any {
	return []any{k, v}
}

// Int creates an integer key-value pair for structured logging.
func Int(k string, v int) any {
	return []any{k, v}
}

// Format specifies the output format for logs.
type Format string

const (
	// FormatLogfmt outputs logs in logfmt format (key=value pairs).
	FormatLogfmt Format = "logfmt"
	// FormatJSON outputs logs as one JSON object per line.
	FormatJSON Format = "json"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(s)) {
	case FormatLogfmt, "":
		return FormatLogfmt, true
	case FormatJSON:
		return FormatJSON, true
	default:
		return "", false
	}
}

// Options configures the logger behavior.
type Options struct {
	Format           Format     // Output format: logfmt or json
	Level            slog.Level // Minimum log level
	Color            bool       // Enable colorization for level field only
	Writer           io.Writer  // Output writer (default: os.Stderr)
	DisableTimestamp bool       // Disable timestamp in output
}

// Option configures logger behavior.
type Option func(*Options)

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithColor enables colorization for the level field only.
func WithColor(enabled bool) Option {
	return func(o *Options) {
		o.Color = enabled
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

// WithTimestamp enables the time field.
func WithTimestamp(enabled bool) Option {
	return func(o *Options) {
		o.DisableTimestamp = !enabled
	}
}

// logger implements Logger on top of handler.
type logger struct {
	handler *handler
	attrs   []slog.Attr
}

// New creates a new Logger with the given options.
func New(opts ...Option) Logger {
	options := Options{
		Format:           FormatLogfmt,
		Level:            slog.LevelInfo,
		Writer:           os.Stderr,
		DisableTimestamp: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Writer == nil {
		options.Writer = os.Stderr
	}

	return &logger{
		handler: newHandler(options),
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return New(WithWriter(io.Discard), WithLevel(slog.LevelError+1))
}

// With returns a new Logger with the given key-value pairs attached.
func (l *logger) With(kv ...any) Logger {
	newAttrs := append([]slog.Attr{}, l.attrs...)
	newAttrs = append(newAttrs, kvToAttrs(kv)...)

	return &logger{
		handler: l.handler,
		attrs:   newAttrs,
	}
}

// Debug logs a debug message.
func (l *logger) Debug(msg string, kv ...any) {
	l.log(slog.LevelDebug, msg, kvToAttrs(kv))
}

// Info logs an informational message.
func (l *logger) Info(msg string, kv ...any) {
	l.log(slog.LevelInfo, msg, kvToAttrs(kv))
}

// Warn logs a warning message.
func (l *logger) Warn(msg string, kv ...any) {
	l.log(slog.LevelWarn, msg, kvToAttrs(kv))
}

// Error logs an error message.
func (l *logger) Error(err error, msg string, kv ...any) {
	attrs := kvToAttrs(kv)
	if err != nil {
		attrs = append([]slog.Attr{slog.Any("error", err)}, attrs...)
	}
	l.log(slog.LevelError, msg, attrs)
}

func (l *logger) log(level slog.Level, msg string, attrs []slog.Attr) {
	allAttrs := append([]slog.Attr{}, l.attrs...)
	allAttrs = append(allAttrs, attrs...)
	l.handler.handle(level, msg, allAttrs)
}
