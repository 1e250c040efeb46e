package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Rotation defaults for the optional log file.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 5
)

type Config struct {
	Level        LogLevel
	Format       string // "text" or "json"
	EnableColors bool
	// File, when set, receives a copy of every record and is rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	logFile       *lumberjack.Logger
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorGray   = "\033[37m"
	ColorBold   = "\033[1m"
)

var levelColors = map[slog.Level]string{
	slog.LevelDebug: ColorGray,
	slog.LevelInfo:  ColorBlue,
	slog.LevelWarn:  ColorYellow,
	slog.LevelError: ColorRed,
}

// ColoredTextHandler is a text handler that tints the message by level.
// Derived handlers (With, WithGroup) keep the tint.
type ColoredTextHandler struct {
	slog.Handler
	enableColors bool
}

func NewColoredTextHandler(w io.Writer, opts *slog.HandlerOptions, enableColors bool) *ColoredTextHandler {
	return &ColoredTextHandler{
		Handler:      slog.NewTextHandler(w, opts),
		enableColors: enableColors,
	}
}

func (h *ColoredTextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Message = h.colorize(r.Level, r.Message)
	return h.Handler.Handle(ctx, r)
}

func (h *ColoredTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColoredTextHandler{Handler: h.Handler.WithAttrs(attrs), enableColors: h.enableColors}
}

func (h *ColoredTextHandler) WithGroup(name string) slog.Handler {
	return &ColoredTextHandler{Handler: h.Handler.WithGroup(name), enableColors: h.enableColors}
}

func (h *ColoredTextHandler) colorize(level slog.Level, message string) string {
	color, ok := levelColors[level]
	if !h.enableColors || !ok {
		return message
	}
	return color + ColorBold + message + ColorReset
}

// isTerminal checks if the output is a terminal (TTY)
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// ParseLevel maps a level name to its slog level; unknown names mean info.
func ParseLevel(level LogLevel) slog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Initialize replaces the global logger. A log file opened by a previous call
// is closed once the new logger is in place.
func Initialize(config Config) {
	mu.Lock()
	defer mu.Unlock()

	var (
		out  io.Writer = os.Stdout
		file *lumberjack.Logger
	)
	if config.File != "" {
		file = newRotatingFile(config)
		out = io.MultiWriter(os.Stdout, file)
	}

	defaultLogger = slog.New(newHandler(out, config))
	slog.SetDefault(defaultLogger)

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
}

// Close releases the log file, if any. Logging keeps working afterwards
// because lumberjack reopens the file on the next write.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func newHandler(out io.Writer, config Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(config.Level)}
	if strings.ToLower(config.Format) == "json" {
		return slog.NewJSONHandler(out, opts)
	}
	// Colors only when writing straight to a terminal
	return NewColoredTextHandler(out, opts, config.EnableColors && isTerminal(out))
}

func newRotatingFile(config Config) *lumberjack.Logger {
	maxSize := config.MaxSizeMB
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeMB
	}
	maxBackups := config.MaxBackups
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}

	return &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

// GetLogger returns a logger with component context
func GetLogger(component string) *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()

	if l == nil {
		Initialize(Config{Level: LevelInfo, Format: "text", EnableColors: true})
		return GetLogger(component)
	}
	return l.With("component", component)
}
