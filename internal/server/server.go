// Package server exposes the pipeline over HTTP: a multipart KMZ upload
// endpoint plus health and layer-inspection routes. The transport stays a
// thin shell; all processing semantics live in the pipeline.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hugo98-py/KMZtoJSON/internal/boundary"
	"github.com/hugo98-py/KMZtoJSON/internal/config"
	"github.com/hugo98-py/KMZtoJSON/internal/kmz"
	"github.com/hugo98-py/KMZtoJSON/internal/pipeline"
	"github.com/hugo98-py/KMZtoJSON/internal/store"
)

// Server wires the upload routes to a pipeline and run-log store.
type Server struct {
	cfg      config.ServerConfig
	pipeline *pipeline.Pipeline
	layers   *boundary.Store
	runs     store.Store
	router   chi.Router
}

// New builds the HTTP handler stack.
func New(cfg config.ServerConfig, p *pipeline.Pipeline, layers *boundary.Store, runs store.Store) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		pipeline: p,
		layers:   layers,
		runs:     runs,
	}

	originAllowed, err := originMatcher(cfg.AllowedOrigins, cfg.AllowedOriginPattern)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(origin)
		},
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	}))
	r.Use(rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.Get("/health", s.handleHealth)
	r.Get("/layers", s.handleLayers)
	r.Post("/upload-kmz", s.handleUpload)

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// originMatcher combines the exact-origin whitelist with an optional origin
// pattern (e.g. any *.flutterflow.app subdomain).
func originMatcher(origins []string, pattern string) (func(string) bool, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "server: compile origin pattern %q", pattern)
		}
	}
	return func(origin string) bool {
		for _, o := range origins {
			if origin == o {
				return true
			}
		}
		return re != nil && re.MatchString(origin)
	}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayers reports the loaded boundary layers, useful for verifying the
// dataset the process is serving with.
func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	type layerInfo struct {
		Name     string `json:"name"`
		Field    string `json:"field"`
		Sentinel string `json:"sentinel"`
		Features int    `json:"features"`
	}
	infos := make([]layerInfo, 0, s.layers.Len())
	for _, l := range s.layers.Layers() {
		infos = append(infos, layerInfo{
			Name:     l.Name,
			Field:    l.Field,
			Sentinel: l.Sentinel,
			Features: l.Len(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleUpload accepts a multipart KMZ upload and responds with the enriched
// record list. Bad input maps to 400; anything else to 500.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := zap.L().With(zap.String("component", "server"))

	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload field")
		return
	}
	defer file.Close() //nolint:errcheck

	if !strings.EqualFold(filepath.Ext(header.Filename), ".kmz") {
		writeError(w, http.StatusBadRequest, "only KMZ files are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable upload")
		return
	}

	records, err := s.pipeline.Run(r.Context(), data)
	s.recordRun(r, header.Filename, len(records), time.Since(start), err)
	if err != nil {
		if kmz.IsBadInput(err) {
			log.Warn("upload rejected", zap.String("file", header.Filename), zap.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("upload processing failed", zap.String("file", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error processing KMZ")
		return
	}

	log.Info("upload processed",
		zap.String("file", header.Filename),
		zap.Int("points", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, records)
}

// recordRun logs the run to the store; store failures never fail the request.
func (s *Server) recordRun(r *http.Request, source string, points int, elapsed time.Duration, runErr error) {
	run := &store.Run{
		Source:     source,
		Points:     points,
		Status:     store.RunStatusComplete,
		DurationMS: elapsed.Milliseconds(),
	}
	if runErr != nil {
		run.Status = store.RunStatusFailed
		run.Error = runErr.Error()
		run.Points = 0
	}
	if err := s.runs.RecordRun(r.Context(), run); err != nil {
		zap.L().Warn("server: record run failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
