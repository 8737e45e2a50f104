// Package config loads glyphd settings from flags, with environment
// variables as defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the glyphd settings.
type Config struct {
	Addr        string
	Budget      int64
	FontPath    string
	DefaultSize float64
	MaxTextLen  int
	RunCache    int
	LogLevel    string
	Shutdown    time.Duration
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func parseFloatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Load parses args (without the program name). Flags take precedence over
// the GLYPHCACHE_* environment variables and LOG_LEVEL.
func Load(args []string) (*Config, error) {
	var c Config

	fs := flag.NewFlagSet("glyphd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	shutdown, err := time.ParseDuration(envOr("GLYPHCACHE_SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		shutdown = 5 * time.Second
	}

	budget := fs.Int64("budget", int64(parseIntEnv("GLYPHCACHE_BUDGET", 4<<20)), "glyph cache byte budget")
	fs.StringVar(&c.Addr, "addr", envOr("GLYPHCACHE_ADDR", ":8080"), "listen address")
	fs.StringVar(&c.FontPath, "font", envOr("GLYPHCACHE_FONT", ""), "TTF/OTF file to serve as the default font (built-in Go fonts if empty)")
	fs.Float64Var(&c.DefaultSize, "size", parseFloatEnv("GLYPHCACHE_SIZE", 16), "default text size in pixels")
	fs.IntVar(&c.MaxTextLen, "max-text", parseIntEnv("GLYPHCACHE_MAX_TEXT", 256), "maximum runes per request")
	fs.IntVar(&c.RunCache, "run-cache", parseIntEnv("GLYPHCACHE_RUN_CACHE", 1024), "shaped runs kept (0 disables)")
	fs.StringVar(&c.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.DurationVar(&c.Shutdown, "shutdown-timeout", shutdown, "graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.Budget = *budget

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Budget < 0 {
		errs = append(errs, fmt.Errorf("budget must not be negative, got %d", c.Budget))
	}
	if !(c.DefaultSize > 0) {
		errs = append(errs, fmt.Errorf("size must be positive, got %v", c.DefaultSize))
	}
	if c.MaxTextLen <= 0 {
		errs = append(errs, fmt.Errorf("max-text must be positive, got %d", c.MaxTextLen))
	}
	if c.RunCache < 0 {
		errs = append(errs, fmt.Errorf("run-cache must not be negative, got %d", c.RunCache))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	l, err := ParseLevel(level)
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
