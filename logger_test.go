package glyphcache

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDefaultLoggerDiscards(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() = nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled at %v", level)
		}
	}

	h := l.Handler().WithAttrs([]slog.Attr{slog.Int("glyphs", 3)}).WithGroup("cache")
	if _, ok := h.(nopHandler); !ok {
		t.Errorf("derived handler is %T, want nopHandler", h)
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle() = %v", err)
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)
	if Logger() != custom {
		t.Fatal("Logger() is not the logger passed to SetLogger")
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left an enabled logger")
	}
}

func TestCacheUsesPackageLoggerByDefault(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	c := mustNew(t, 10)
	mustAdd(t, c, "a", 1, newTestBitmap(20))
	mustAdd(t, c, "b", 1, newTestBitmap(5))

	if !strings.Contains(buf.String(), "glyph group evicted") {
		t.Errorf("expected eviction to be logged, got: %s", buf.String())
	}
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	var pkgBuf, ownBuf bytes.Buffer
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	SetLogger(slog.New(slog.NewTextHandler(&pkgBuf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	own := slog.New(slog.NewTextHandler(&ownBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := New[string, *testBitmap](10, WithLogger(own))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	mustAdd(t, c, "a", 1, newTestBitmap(20))
	mustAdd(t, c, "b", 1, newTestBitmap(5))

	if pkgBuf.Len() != 0 {
		t.Errorf("package logger should stay unused, got: %s", pkgBuf.String())
	}
	if !strings.Contains(ownBuf.String(), "glyph group evicted") {
		t.Errorf("expected eviction in cache logger, got: %s", ownBuf.String())
	}
}

func TestSetLoggerWhileEvicting(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	const goroutines = 32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, _ := New[string, *testBitmap](8)
			_, _ = c.Add("a", 1, newTestBitmap(16))
			if _, err := c.Add("b", 1, newTestBitmap(16)); err != nil {
				t.Error(err)
			}
		}()
	}

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}

	wg.Wait()
}

func BenchmarkDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("glyph group evicted", "glyphs", 12, "bytes", 4096)
	}
}
