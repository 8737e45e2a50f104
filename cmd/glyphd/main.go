// Command glyphd serves text rendering through a shared glyph cache and
// exposes the cache's statistics, groups and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/internal/config"
	"github.com/gogpu/glyphcache/internal/inspect"
	"github.com/gogpu/glyphcache/raster"
	"github.com/gogpu/glyphcache/text"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	glyphcache.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("glyphd failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	fonts, def, err := loadFonts(cfg.FontPath)
	if err != nil {
		return err
	}

	c, err := glyphcache.New[raster.Descriptor, *raster.Glyph](cfg.Budget, glyphcache.WithLogger(logger))
	if err != nil {
		return err
	}
	r := text.NewRenderer(c, text.WithShaper(text.NewShaper(cfg.RunCache)))

	s, err := inspect.NewServer(r, inspect.Options{
		Fonts:       fonts,
		DefaultFont: def,
		DefaultSize: cfg.DefaultSize,
		MaxTextLen:  cfg.MaxTextLen,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("glyphd listening", "addr", cfg.Addr, "budget", cfg.Budget, "fonts", len(fonts), "default_font", def)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	s.SetDraining(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	st := c.Stats()
	logger.Info("glyphd stopped",
		"hit_rate", fmt.Sprintf("%.1f%%", st.HitRate()),
		"groups", st.Groups,
		"peak_bytes", st.PeakBytes,
		"evicted_groups", st.EvictedGroups,
	)
	return nil
}

// loadFonts returns the built-in Go fonts, plus the font at path if one
// is given, which then becomes the default.
func loadFonts(path string) (map[string]*raster.Source, string, error) {
	builtin := map[string][]byte{
		"goregular": goregular.TTF,
		"gobold":    gobold.TTF,
		"gomono":    gomono.TTF,
	}
	fonts := make(map[string]*raster.Source, len(builtin)+1)
	for name, data := range builtin {
		src, err := raster.LoadSource(data)
		if err != nil {
			return nil, "", fmt.Errorf("font %s: %w", name, err)
		}
		fonts[name] = src
	}
	if path == "" {
		return fonts, "goregular", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	src, err := raster.LoadSource(data)
	if err != nil {
		return nil, "", fmt.Errorf("font %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fonts[name] = src
	return fonts, name, nil
}
