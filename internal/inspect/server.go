// Package inspect serves a glyph cache over HTTP: statistics, the group
// registry, Prometheus metrics, text rendering through the cache, and a
// way to clear it.
package inspect

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/internal/metrics"
	"github.com/gogpu/glyphcache/raster"
	"github.com/gogpu/glyphcache/text"
)

const (
	defaultMaxTextLen = 256
	maxSize           = 512
	requestTimeout    = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Fonts are the sources clients can pick with the font parameter.
	Fonts map[string]*raster.Source

	// DefaultFont names the font used when the request has none. It
	// defaults to the only font when there is exactly one.
	DefaultFont string

	// DefaultSize is the size in pixels used when the request has none.
	DefaultSize float64

	// MaxTextLen bounds the runes rendered per request.
	MaxTextLen int

	// Logger receives access and error logs. Defaults to glyphcache.Logger().
	Logger *slog.Logger
}

// Server is the inspection surface of one renderer and its cache.
type Server struct {
	renderer *text.Renderer
	fonts    map[string]*raster.Source
	defFont  string
	defSize  float64
	maxText  int
	logger   *slog.Logger
	registry *prometheus.Registry

	// Renders hold the read lock, Clear the write lock: clearing requires
	// that no group is busy.
	mu sync.RWMutex

	draining atomic.Bool
}

// NewServer returns a server for r.
func NewServer(r *text.Renderer, opts Options) (*Server, error) {
	if len(opts.Fonts) == 0 {
		return nil, errors.New("inspect: no fonts")
	}
	def := opts.DefaultFont
	if def == "" && len(opts.Fonts) == 1 {
		for name := range opts.Fonts {
			def = name
		}
	}
	if _, ok := opts.Fonts[def]; !ok {
		return nil, fmt.Errorf("inspect: unknown default font %q", def)
	}

	s := &Server{
		renderer: r,
		fonts:    opts.Fonts,
		defFont:  def,
		defSize:  opts.DefaultSize,
		maxText:  opts.MaxTextLen,
		logger:   opts.Logger,
		registry: prometheus.NewRegistry(),
	}
	if s.defSize <= 0 {
		s.defSize = 16
	}
	if s.maxText <= 0 {
		s.maxText = defaultMaxTextLen
	}
	if s.logger == nil {
		s.logger = glyphcache.Logger()
	}
	if err := s.registry.Register(metrics.NewCollector("glyphcache", r.Cache(), r)); err != nil {
		return nil, fmt.Errorf("inspect: register metrics: %w", err)
	}
	return s, nil
}

// SetDraining makes /healthz report 503 UNAVAILABLE, for graceful shutdown.
func (s *Server) SetDraining(v bool) {
	s.draining.Store(v)
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(AccessLog(s.logger))
	r.Use(Recover(s.logger))
	r.Use(middleware.CleanPath)
	r.Use(middleware.Timeout(requestTimeout))

	r.NotFound(HandlerFunc(func(http.ResponseWriter, *http.Request) error {
		return NotFound("no such route")
	}).ServeHTTP)

	r.Method(http.MethodGet, "/healthz", HandlerFunc(s.health))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Method(http.MethodGet, "/stats", HandlerFunc(s.stats))
	r.Method(http.MethodDelete, "/stats", HandlerFunc(s.resetStats))
	r.Method(http.MethodGet, "/groups", HandlerFunc(s.groups))
	r.Method(http.MethodGet, "/fonts", HandlerFunc(s.listFonts))
	r.Method(http.MethodGet, "/render", HandlerFunc(s.render))
	r.Method(http.MethodGet, "/measure", HandlerFunc(s.measure))
	r.Method(http.MethodDelete, "/cache", HandlerFunc(s.clear))
	return r
}

func (s *Server) fontNames() []string {
	names := make([]string, 0, len(s.fonts))
	for name := range s.fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fontName returns the name of the source with the given ID.
func (s *Server) fontName(id uint64) string {
	for name, src := range s.fonts {
		if src.ID() == id {
			return name
		}
	}
	return fmt.Sprintf("%016x", id)
}
