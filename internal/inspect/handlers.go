package inspect

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gogpu/glyphcache"
	"github.com/gogpu/glyphcache/raster"
	"github.com/gogpu/glyphcache/text"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) error {
	if s.draining.Load() {
		return Unavailable("draining")
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	return nil
}

type statsResponse struct {
	glyphcache.Stats
	HitRate  float64 `json:"HitRate"`
	Uncached uint64  `json:"Uncached"`

	Runs text.RunStats `json:"Runs"`
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) error {
	st := s.renderer.Cache().Stats()
	writeSuccess(w, http.StatusOK, statsResponse{
		Stats:    st,
		HitRate:  st.HitRate(),
		Uncached: s.renderer.Uncached(),
		Runs:     s.renderer.Shaper().RunCacheStats(),
	})
	return nil
}

func (s *Server) resetStats(w http.ResponseWriter, _ *http.Request) error {
	s.renderer.Cache().ResetStats()
	w.WriteHeader(http.StatusNoContent)
	return nil
}

type groupResponse struct {
	Descriptor string  `json:"descriptor"`
	Font       string  `json:"font"`
	Size       float64 `json:"size"`
	Mode       string  `json:"mode"`
	Glyphs     int     `json:"glyphs"`
	Bytes      int64   `json:"bytes"`
	Busy       bool    `json:"busy"`
}

// groups lists font groups, most recently used first.
func (s *Server) groups(w http.ResponseWriter, _ *http.Request) error {
	infos := s.renderer.Cache().Groups()
	out := make([]groupResponse, 0, len(infos))
	for _, g := range infos {
		d := g.Descriptor
		out = append(out, groupResponse{
			Descriptor: d.String(),
			Font:       s.fontName(d.Font),
			Size:       float64(d.Size) / 64,
			Mode:       d.Mode.String(),
			Glyphs:     g.Glyphs,
			Bytes:      g.Bytes,
			Busy:       g.Busy,
		})
	}
	writeSuccess(w, http.StatusOK, out)
	return nil
}

type fontResponse struct {
	Name    string `json:"name"`
	Family  string `json:"family"`
	ID      string `json:"id"`
	Default bool   `json:"default"`
}

func (s *Server) listFonts(w http.ResponseWriter, _ *http.Request) error {
	names := s.fontNames()
	out := make([]fontResponse, 0, len(names))
	for _, name := range names {
		src := s.fonts[name]
		out = append(out, fontResponse{
			Name:    name,
			Family:  src.Family(),
			ID:      fmt.Sprintf("%016x", src.ID()),
			Default: name == s.defFont,
		})
	}
	writeSuccess(w, http.StatusOK, out)
	return nil
}

// textRequest holds the parameters shared by /render and /measure.
type textRequest struct {
	text string
	face text.Face
	pad  int
}

func (s *Server) parseText(r *http.Request) (textRequest, error) {
	q := r.URL.Query()
	req := textRequest{text: q.Get("text")}
	if req.text == "" {
		return req, BadRequest("text is required")
	}
	if n := utf8.RuneCountInString(req.text); n > s.maxText {
		return req, NewAppError(http.StatusBadRequest, CodeBadRequest,
			"text too long", map[string]int{"runes": n, "max": s.maxText})
	}

	name := q.Get("font")
	if name == "" {
		name = s.defFont
	}
	src, ok := s.fonts[name]
	if !ok {
		return req, NewAppError(http.StatusBadRequest, CodeBadRequest,
			"unknown font", map[string]any{"font": name, "fonts": s.fontNames()})
	}

	size := s.defSize
	if v := q.Get("size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f > 0) || f > maxSize {
			return req, BadRequest(fmt.Sprintf("size must be a number in (0, %d]", maxSize))
		}
		size = f
	}

	mode := raster.ModeGray
	if v := q.Get("mode"); v != "" {
		m, err := raster.ParseMode(v)
		if err != nil {
			return req, BadRequest(err.Error())
		}
		mode = m
	}

	if v := q.Get("pad"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > 64 {
			return req, BadRequest("pad must be an integer in [0, 64]")
		}
		req.pad = p
	}

	req.face = text.NewFace(src, size, mode)
	return req, nil
}

// render draws the text through the cache and returns a PNG.
func (s *Server) render(w http.ResponseWriter, r *http.Request) error {
	req, err := s.parseText(r)
	if err != nil {
		return err
	}

	s.mu.RLock()
	img, err := s.renderer.RenderImage(req.face, req.text, color.Black, color.White, req.pad)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Warn("render failed", "text", req.text, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
		return Internal("render failed")
	}
	if err := r.Context().Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}

type measureResponse struct {
	Advance float64 `json:"advance"`
	Ink     [4]int  `json:"ink"`
}

func (s *Server) measure(w http.ResponseWriter, r *http.Request) error {
	req, err := s.parseText(r)
	if err != nil {
		return err
	}

	s.mu.RLock()
	adv, ink, err := s.renderer.Measure(req.face, req.text)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Warn("measure failed", "text", req.text, "error", err)
		return Internal("measure failed")
	}
	writeSuccess(w, http.StatusOK, measureResponse{
		Advance: float64(adv) / 64,
		Ink:     [4]int{ink.Min.X, ink.Min.Y, ink.Max.X, ink.Max.Y},
	})
	return nil
}

type clearResponse struct {
	Groups int   `json:"groups"`
	Bytes  int64 `json:"bytes"`
}

// clear empties the glyph cache and the shaped-run cache. It waits for
// renders in flight, so no group is busy.
func (s *Server) clear(w http.ResponseWriter, _ *http.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.renderer.Cache()
	before := clearResponse{Groups: c.Len(), Bytes: c.Bytes()}
	c.Clear()
	s.renderer.Shaper().ClearRuns()

	s.logger.Info("glyph cache cleared", "groups", before.Groups, "bytes", before.Bytes)
	writeSuccess(w, http.StatusOK, before)
	return nil
}
