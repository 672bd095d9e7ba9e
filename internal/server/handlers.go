package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stemma/pkg/buildinfo"
	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/pipeline"
	"github.com/matzehuels/stemma/pkg/store"
	"github.com/matzehuels/stemma/pkg/tree"
)

// layoutRequest is the body of POST /v1/layouts. Exactly one of Records and
// Source is set; Source must be an http(s) URL.
type layoutRequest struct {
	Records       *graph.Records `json:"records,omitempty"`
	Source        string         `json:"source,omitempty"`
	Refresh       bool           `json:"refresh,omitempty"`
	MaxIterations int            `json:"max_iterations,omitempty"`
	Timeout       string         `json:"timeout,omitempty"` // e.g. "30s"
	SkipOptimize  bool           `json:"skip_optimize,omitempty"`
}

// layoutResponse is the body returned after computing a layout.
type layoutResponse struct {
	Layout   graph.Layout `json:"layout"`
	Warnings []string     `json:"warnings,omitempty"`
	Cached   bool         `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
		"go":      info.Go,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Stats.Snapshot())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req layoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts, err := s.options(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The optimizer stops itself at opts.Timeout; the slack covers fetching
	// and placement.
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.LayoutTimeout+requestSlack)
	defer cancel()

	recs, loadHit, err := s.runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, warnings, layoutHit, err := s.runner.LayoutWithCacheInfo(ctx, recs, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	l.ID, l.CreatedAt = "", time.Time{}
	if err := s.store.Save(r.Context(), &l); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/layouts/"+l.ID)
	writeJSON(w, http.StatusCreated, layoutResponse{
		Layout:   l,
		Warnings: warningStrings(warnings),
		Cached:   loadHit || layoutHit,
	})
}

// options validates a request and converts it to pipeline options.
func (s *Server) options(req layoutRequest) (pipeline.Options, error) {
	opts := pipeline.Options{
		Records:       req.Records,
		Source:        req.Source,
		Refresh:       req.Refresh,
		MaxIterations: req.MaxIterations,
		SkipOptimize:  req.SkipOptimize,
		Logger:        s.logger,
	}
	switch {
	case req.Records != nil && req.Source != "":
		return opts, errs.New(errs.ErrCodeInvalidInput, "records and source are mutually exclusive")
	case req.Records == nil && req.Source == "":
		return opts, errs.New(errs.ErrCodeInvalidInput, "records or source is required")
	case req.Records == nil && !errs.IsURL(req.Source):
		return opts, errs.New(errs.ErrCodeInvalidInput, "source must be an http(s) URL")
	}
	if req.MaxIterations < 0 {
		return opts, errs.New(errs.ErrCodeInvalidInput, "max_iterations must not be negative")
	}

	opts.Timeout = s.cfg.LayoutTimeout
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid timeout %q", req.Timeout)
		}
		opts.Timeout = min(d, s.cfg.LayoutTimeout)
	}
	if err := opts.ValidateForLoad(); err != nil {
		return opts, err
	}
	opts.SetLayoutDefaults()
	return opts, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	l, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		s.writeError(w, errs.New(errs.ErrCodeNotFound, "layout %q not found", id))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := pipeline.ValidateFormats([]string{format}); err != nil {
		s.writeError(w, err)
		return
	}
	l, ok := s.lookup(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Formats:  []string{format},
		Renderer: q.Get("renderer"),
		Detailed: q.Get("detailed") == "true",
		Logger:   s.logger,
	}
	artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), *l, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// lookup fetches the layout named by the {id} route parameter and writes a
// 404 when it does not exist.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*graph.Layout, bool) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		s.writeError(w, errs.New(errs.ErrCodeNotFound, "layout %q not found", id))
		return nil, false
	}
	l, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return l, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		err = errs.Wrap(errs.ErrCodeNotFound, err, "lookup")
	}
	err = errs.Classify(err, "layout")
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error: errs.UserMessage(err),
		Code:  string(errs.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func warningStrings(warnings []tree.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}
