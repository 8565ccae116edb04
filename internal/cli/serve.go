package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/asciidiag/asciidiag/pkg/buildinfo"
	"github.com/asciidiag/asciidiag/pkg/cache"
	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/external"
	"github.com/asciidiag/asciidiag/pkg/pipeline"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram rendering over HTTP",
		Long: `Serve starts an HTTP server exposing the render pipeline. POST a
diagram source to /render to get its text rendering, or a whole markdown
document to /document to get it back with diagram blocks replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config()

			store := newCache(ctx, cfg.Cache, false)
			keyer := cache.NewScopedKeyer(nil, "srv:")
			tools := external.NewRunner(external.Options{
				Enabled: cfg.External.Enabled,
				D2:      cfg.External.D2,
				Diagon:  cfg.External.Diagon,
				Timeout: time.Duration(cfg.External.TimeoutSeconds) * time.Second,
			}, store, keyer, c.Logger)
			runner := pipeline.NewRunner(store, keyer, tools, c.Logger)
			defer runner.Close()

			srv := &server{cli: c, runner: runner}
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			printInfo("listening on %s", addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")

	return cmd
}

type server struct {
	cli    *CLI
	runner *pipeline.Runner
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/document", s.handleDocument)
	return r
}

// requestLogger tags each request with a UUID and logs on completion.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		logger := s.cli.Logger.With("request_id", id)
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

type renderRequest struct {
	Tag      string  `json:"tag"`
	Text     string  `json:"text"`
	Zoom     float64 `json:"zoom"`
	External bool    `json:"external"`
	Refresh  bool    `json:"refresh"`
}

type renderResponse struct {
	Lines   []string `json:"lines"`
	Dialect string   `json:"dialect"`
	Kind    string   `json:"kind"`
	Tool    string   `json:"tool"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Note    string   `json:"note,omitempty"`
	Cached  bool     `json:"cached"`
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	opts := s.cli.pipelineOptions(req.Zoom, !req.External, req.Refresh)
	opts.Source = diagram.Source{Tag: req.Tag, Text: req.Text}
	opts.Logger = loggerFromContext(r.Context())

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		Lines:   res.Artifact.Lines,
		Dialect: string(res.Artifact.Dialect),
		Kind:    string(res.Artifact.Kind),
		Tool:    res.Artifact.Tool,
		Width:   res.Artifact.Width,
		Height:  res.Artifact.Height,
		Note:    res.Note,
		Cached:  res.CacheInfo.ArtifactHit,
	})
}

type documentRequest struct {
	Content  string  `json:"content"`
	Zoom     float64 `json:"zoom"`
	External bool    `json:"external"`
}

type documentResponse struct {
	Content  string `json:"content"`
	Rendered int    `json:"rendered"`
	Failed   int    `json:"failed"`
}

func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	opts := s.cli.pipelineOptions(req.Zoom, !req.External, false)
	opts.Logger = loggerFromContext(r.Context())

	blocks, err := s.runner.ExecuteDocument(r.Context(), req.Content, opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	rendered, failed := 0, 0
	for _, b := range blocks {
		if b.Result == nil {
			continue
		}
		if b.Err != nil {
			failed++
		} else {
			rendered++
		}
	}

	writeJSON(w, http.StatusOK, documentResponse{
		Content:  pipeline.Splice(req.Content, blocks),
		Rendered: rendered,
		Failed:   failed,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
