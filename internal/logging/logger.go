// Package logging provides the leveled console logger used by the viewer.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level controls logging verbosity.
type Level int

const (
	LevelNone Level = iota
	LevelBasic
	LevelRequests
	LevelDebug
)

var levelNames = []string{"none", "basic", "requests", "debug"}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return strconv.Itoa(int(l))
}

// ParseLevel accepts a level name or its number.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "info":
		return LevelBasic, nil
	case "verbose":
		return LevelRequests, nil
	}
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(levelNames) {
		return Level(n), nil
	}
	return LevelBasic, fmt.Errorf("unknown log level %q", s)
}

// Request describes one served HTTP request.
type Request struct {
	ID       string
	Method   string
	Path     string
	Status   int
	Bytes    int64
	Encoding string
	Duration time.Duration
}

// Logger is the logging interface used across the viewer.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
	// Request logs a served HTTP request.
	Request(req Request)
}

// DefaultLogger implements Logger with configurable verbosity.
type DefaultLogger struct {
	mu       sync.Mutex
	output   io.Writer
	level    Level
	colorize bool
}

// Option configures a DefaultLogger.
type Option func(*DefaultLogger)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(l *DefaultLogger) { l.output = w }
}

// WithLevel sets the log level.
func WithLevel(level Level) Option {
	return func(l *DefaultLogger) { l.level = level }
}

// WithColor enables/disables colorized output.
func WithColor(colorize bool) Option {
	return func(l *DefaultLogger) { l.colorize = colorize }
}

// New creates a DefaultLogger writing to stderr at LevelBasic.
func New(opts ...Option) *DefaultLogger {
	l := &DefaultLogger{
		output:   os.Stderr,
		level:    LevelBasic,
		colorize: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Level returns the configured level.
func (l *DefaultLogger) Level() Level { return l.level }

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

func (l *DefaultLogger) color(c, s string) string {
	if l.colorize {
		return c + s + colorReset
	}
	return s
}

func (l *DefaultLogger) timestamp() string {
	return time.Now().Format("15:04:05.000")
}

func (l *DefaultLogger) logf(min Level, tag, tagColor, format string, args []interface{}) {
	if l.level < min {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.output, "%s %s %s\n",
		l.color(colorGray, l.timestamp()),
		l.color(tagColor, tag),
		fmt.Sprintf(format, args...),
	)
}

// Info logs a basic message.
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.logf(LevelBasic, "[INFO]", colorCyan, format, args)
}

// Warn logs a warning.
func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	l.logf(LevelBasic, "[WARN]", colorYellow, format, args)
}

// Error logs an error. Errors are shown at every level except none.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.logf(LevelBasic, "[ERROR]", colorRed, format, args)
}

// Debug logs debug information.
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, "[DEBUG]", colorGray, format, args)
}

// Request logs a served HTTP request.
func (l *DefaultLogger) Request(req Request) {
	if l.level < LevelRequests {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Status color based on code
	statusColor := colorGreen
	if req.Status >= 400 {
		statusColor = colorRed
	} else if req.Status >= 300 {
		statusColor = colorYellow
	}

	enc := ""
	if req.Encoding != "" {
		enc = " " + req.Encoding
	}

	fmt.Fprintf(l.output, "%s %s %s %s %dB%s %s",
		l.color(colorGray, l.timestamp()),
		l.color(colorCyan, req.Method),
		req.Path,
		l.color(statusColor, strconv.Itoa(req.Status)),
		req.Bytes,
		enc,
		req.Duration.Round(time.Microsecond),
	)
	if l.level >= LevelDebug && req.ID != "" {
		fmt.Fprintf(l.output, " %s", l.color(colorGray, req.ID))
	}
	fmt.Fprintln(l.output)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Info(format string, args ...interface{})  {}
func (NopLogger) Warn(format string, args ...interface{})  {}
func (NopLogger) Error(format string, args ...interface{}) {}
func (NopLogger) Debug(format string, args ...interface{}) {}
func (NopLogger) Request(req Request)                      {}
