package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/depforce/pkg/buildinfo"
	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pipeline"
	"github.com/matzehuels/depforce/pkg/render"
)

// maxGraphBody bounds POSTed snapshots.
const maxGraphBody = 8 << 20

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Connections int    `json:"connections"`
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", render.FormatHTML.ContentType())
	_, _ = w.Write(s.page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	n := len(s.sessions)
	s.mu.RUnlock()
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Get().Version, Connections: n})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.currentGraph(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, err := s.currentGraph(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.layoutAndRespond(w, r, g)
}

func (s *Server) handleLayoutPost(w http.ResponseWriter, r *http.Request) {
	g, err := graph.ReadGraph(http.MaxBytesReader(w, r.Body, maxGraphBody))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.layoutAndRespond(w, r, g)
}

func (s *Server) layoutAndRespond(w http.ResponseWriter, r *http.Request, g graph.GraphData) {
	opts, err := s.queryOptions(r.URL.Query())
	if err != nil {
		s.respondError(w, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	f, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	opts, err := s.queryOptions(r.URL.Query())
	if err != nil {
		s.respondError(w, err)
		return
	}
	opts.Formats = []string{string(f)}

	g, err := s.currentGraph(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), l, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	_, _ = w.Write(artifacts[string(f)])
}

func (s *Server) currentGraph(r *http.Request) (graph.GraphData, error) {
	if r.URL.Query().Get("refresh") != "" {
		return s.Reload(r.Context(), true)
	}
	return s.Graph(r.Context())
}

// queryOptions overlays width, height, seed, placement, max_ticks, theme,
// tooltips and labels query parameters on the configured defaults.
func (s *Server) queryOptions(q url.Values) (pipeline.Options, error) {
	opts := s.layoutOptions()
	var err error
	if opts.Width, err = floatParam(q, "width", 0); err != nil {
		return opts, err
	}
	if opts.Height, err = floatParam(q, "height", 0); err != nil {
		return opts, err
	}
	if v := q.Get("seed"); v != "" {
		if opts.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "seed %q", v)
		}
	}
	if v := q.Get("max_ticks"); v != "" {
		if opts.MaxTicks, err = strconv.Atoi(v); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "max_ticks %q", v)
		}
	}
	opts.Placement = q.Get("placement")
	opts.Theme = q.Get("theme")
	opts.Tooltips = boolParam(q, "tooltips")
	opts.Labels = boolParam(q, "labels")
	if q.Has("width") && opts.Width <= 0 || q.Has("height") && opts.Height <= 0 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "width and height must be positive")
	}
	return opts, opts.ValidateAndSetDefaults()
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s %q", name, v)
	}
	return f, nil
}

func boolParam(q url.Values, name string) bool {
	b, _ := strconv.ParseBool(q.Get(name))
	return b
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.respondJSON(w, errors.HTTPStatus(err), ErrorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
