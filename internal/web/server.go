// Package web serves the dashboard to a browser. Every page load fetches a
// fresh snapshot once; changing the selection afterwards happens in the page.
// Nothing is cached between requests.
package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Dicklesworthstone/refdash/internal/chart"
	"github.com/Dicklesworthstone/refdash/internal/config"
	"github.com/Dicklesworthstone/refdash/internal/errors"
	"github.com/Dicklesworthstone/refdash/internal/fetcher"
	"github.com/Dicklesworthstone/refdash/internal/logger"
	"github.com/Dicklesworthstone/refdash/internal/model"
)

// Server renders the dashboard pages.
type Server struct {
	cfg    config.Config
	src    fetcher.Source
	log    logger.Logger
	colors chart.ColorFunc
	tmpl   *template.Template
}

func NewServer(cfg config.Config, src fetcher.Source, log logger.Logger) *Server {
	if log == nil {
		log = logger.Noop()
	}
	return &Server{
		cfg:    cfg,
		src:    src,
		log:    log,
		colors: chart.Colors(cfg.Chart.StableColors),
		tmpl:   template.Must(template.New("dashboard").Parse(dashboardTemplate)),
	}
}

// Router wires the dashboard routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/chart", s.handleChart)
	r.Get("/chart.png", s.handleChartPNG)
	r.Get("/api/snapshot", s.handleSnapshot)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("%s %s -> %d (%s) req=%s", r.Method, r.URL.RequestURI(),
			ww.Status(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

// load runs the one fetch for this request. Failures are logged and turn
// into an empty, unloaded snapshot.
func (s *Server) load(ctx context.Context) (model.Snapshot, error) {
	snap, err := s.src.Fetch(ctx)
	if err != nil {
		s.log.Error("fetching %s: %s", s.cfg.Endpoint, errors.Summary(err))
		return model.Snapshot{Group: s.cfg.Group}, err
	}
	return snap, nil
}

// pageData is what the dashboard template renders.
type pageData struct {
	Group       string
	Rows        []model.Row
	Options     []string
	Selected    string
	Placeholder string
	Offered     bool // Selected is one of Options
	Charts      []chartBlock
	Error       string
}

// chartBlock is one metric's chart, rendered up front so that switching the
// selection in the browser needs no further request.
type chartBlock struct {
	Metric string
	Title  string
	HTML   string
	PNG    template.URL // data: URL, empty when the series cannot be drawn
	Hidden bool
}

// handleDashboard fetches once and renders everything the page can show.
// Selecting or clearing a metric happens in the browser; ?metric= only sets
// the initial selection.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.load(r.Context())
	selected := r.URL.Query().Get("metric")

	data := pageData{
		Group:       snap.Group,
		Rows:        snap.Rows(),
		Options:     snap.Options(),
		Selected:    selected,
		Placeholder: "Select a Metric",
	}
	if err != nil && s.cfg.UI.ShowErrors {
		data.Error = errors.Summary(err)
	}

	data.Offered = slices.Contains(data.Options, selected)
	metrics := data.Options
	if selected != "" && !data.Offered {
		metrics = append(append([]string{}, metrics...), selected)
	}
	for _, metric := range metrics {
		data.Charts = append(data.Charts, s.chartBlock(snap, metric, metric != selected))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Error("rendering dashboard: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) chartBlock(snap model.Snapshot, metric string, hidden bool) chartBlock {
	spec := chart.Build(snap, metric, s.colors)
	block := chartBlock{Metric: metric, Title: spec.Title(), Hidden: hidden}

	var buf bytes.Buffer
	if err := chart.RenderHTML(spec, &buf); err != nil {
		s.log.Error("rendering chart for %s: %v", metric, err)
	}
	block.HTML = buf.String()

	buf.Reset()
	if err := chart.RenderPNG(spec, s.cfg.Chart.Width, s.cfg.Chart.Height, &buf); err == nil {
		block.PNG = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
	} else if !errors.IsCode(err, errors.ErrRender) {
		s.log.Error("rendering png for %s: %v", metric, err)
	}
	return block
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.load(r.Context())
	spec := chart.Build(snap, r.URL.Query().Get("metric"), s.colors)

	var buf bytes.Buffer
	if err := chart.RenderHTML(spec, &buf); err != nil {
		s.log.Error("rendering chart: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.load(r.Context())
	spec := chart.Build(snap, r.URL.Query().Get("metric"), s.colors)

	var buf bytes.Buffer
	if err := chart.RenderPNG(spec, s.cfg.Chart.Width, s.cfg.Chart.Height, &buf); err != nil {
		status := http.StatusInternalServerError
		if errors.IsCode(err, errors.ErrRender) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, errors.Summary(err), status)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.load(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(model.NewReport(snap)); err != nil {
		s.log.Error("encoding snapshot: %v", err)
	}
}

// ListenAndServe serves the dashboard on addr until ctx is cancelled.
// /chart, /chart.png and /api/snapshot each fetch on their own; the
// dashboard page does not call them.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrServe,
			"Cannot listen on "+addr, "Pick a free address with --listen")
	case <-ctx.Done():
		s.log.Info("shutting down dashboard")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
