// Package logger provides leveled logging for QuizBolt, backed by zap.
// Debug, info and warning output is only written in verbose mode, which
// the --verbose flag enables; errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format  = FormatConsole
	level   = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	sink    = &swapWriter{w: os.Stderr}
	base    = newZap(FormatConsole)
)

// swapWriter serialises writes and lets tests redirect output.
type swapWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *swapWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *swapWriter) Sync() error { return nil }

func (s *swapWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func newZap(f string) *zap.Logger {
	var enc zapcore.Encoder
	if f == FormatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			LevelKey:         "level",
			MessageKey:       "msg",
			NameKey:          "logger",
			LineEnding:       zapcore.DefaultLineEnding,
			EncodeLevel:      bracketLevel,
			EncodeName:       zapcore.FullNameEncoder,
			EncodeDuration:   zapcore.StringDurationEncoder,
			ConsoleSeparator: " ",
		})
	}
	return zap.New(zapcore.NewCore(enc, sink, level))
}

// bracketLevel renders levels as "[DEBUG]", "[INFO]" and so on.
func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.ErrorLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	sink.set(w)
}

// SetFormat switches between console and JSON encoding.
// Unknown formats fall back to console.
func SetFormat(f string) {
	if f != FormatJSON {
		f = FormatConsole
	}
	mu.Lock()
	defer mu.Unlock()
	format = f
	base = newZap(f)
}

// Format returns the active output format.
func Format() string {
	mu.RLock()
	defer mu.RUnlock()
	return format
}

// Zap returns the underlying logger for callers that want structured fields.
// It honours the verbose level and output set on this package.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	Zap().Debug(fmt.Sprintf(format, args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	if !IsVerbose() || Format() == FormatJSON {
		return
	}
	_, _ = fmt.Fprintf(sink, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	Zap().Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	Zap().Warn(fmt.Sprintf(format, args...))
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	Zap().Error(fmt.Sprintf(format, args...))
}
