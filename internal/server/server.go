// Package server serves the views of an analysed solution over HTTP.
//
// The solution is analysed once at startup (and again on POST /reload). Views
// are built on first request and laid out through the pipeline runner, so
// the runner's layout and artifact caches apply to every response.
//
// Routes:
//
//	GET  /healthz               liveness and build version
//	GET  /elements              resolved elements as JSON
//	GET  /views                 names of the views built so far
//	GET  /views/{name}.{format} a view as svg, pdf, png, dot or json
//	POST /reload                re-analyse the solution
//
// A view name that is not yet known is taken as the seed element of a new
// view; "overview" always names the view of all top-level elements. The
// depth and related query parameters select a separate view per setting.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/archviews/pkg/buildinfo"
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/observability"
	"github.com/matzehuels/archviews/pkg/pipeline"
	"github.com/matzehuels/archviews/pkg/workspace"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

// Server holds the analysed workspace and answers view requests.
type Server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger

	mu sync.Mutex // guards ws and its views
	ws *workspace.Workspace
}

// New creates a server for the solution in opts. Call [Server.Load] before
// serving.
func New(runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	opts.Seed, opts.View = "", ""
	return &Server{runner: runner, opts: opts, logger: logger}
}

// Load analyses the solution and replaces the served workspace.
func (s *Server) Load(ctx context.Context) error {
	a, err := s.runner.Analyze(ctx, s.opts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ws = a.Workspace
	s.mu.Unlock()
	s.logger.Info("loaded solution", "solution", s.opts.Solution, "elements", a.Workspace.Model().Len())
	return nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/elements", s.handleElements)
	r.Get("/views", s.handleViews)
	r.Get("/views/{file}", s.handleView)
	r.Post("/reload", s.handleReload)
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// Element is the JSON form of a model element.
type Element struct {
	Name        string `json:"name"`
	Alias       string `json:"alias"`
	Kind        string `json:"kind"`
	Parent      string `json:"parent,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	kind := r.URL.Query().Get("kind")

	s.mu.Lock()
	elems := ws.Model().Elements()
	s.mu.Unlock()

	out := make([]Element, 0, len(elems))
	for _, e := range elems {
		if kind != "" && string(e.Kind()) != kind {
			continue
		}
		el := Element{
			Name:        e.Name,
			Alias:       e.Alias(),
			Kind:        string(e.Kind()),
			Description: e.Description,
			URL:         e.URL(),
		}
		if p := e.Parent(); p != nil {
			el.Parent = p.Name
		}
		out = append(out, el)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleViews(w http.ResponseWriter, _ *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	s.mu.Lock()
	views := ws.Views()
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	file := chi.URLParam(r, "file")
	format := strings.TrimPrefix(path.Ext(file), ".")
	name := strings.TrimSuffix(file, path.Ext(file))
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	opts := s.opts
	opts.Formats = []string{format}
	if d := r.URL.Query().Get("depth"); d != "" {
		depth, err := strconv.Atoi(d)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid depth: %s", d))
			return
		}
		opts.Depth = depth
	}
	if r.URL.Query().Get("related") == "true" {
		opts.Related = true
	}

	view, err := s.view(ws, name, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	// Layout and render outside the lock; views only grow and this one is
	// complete once view() returns.
	ctx := r.Context()
	g, l, err := s.runner.Layout(ctx, view, view.Name, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	artifacts, err := s.runner.Render(ctx, g, l, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	opts.Refresh = true
	a, err := s.runner.Analyze(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	s.ws = a.Workspace
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"elements": a.Workspace.Model().Len()})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) workspace(w http.ResponseWriter) (*workspace.Workspace, bool) {
	s.mu.Lock()
	ws := s.ws
	s.mu.Unlock()
	if ws == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Code: string(errors.ErrCodeInternal), Message: "solution not loaded"})
		return nil, false
	}
	return ws, true
}

// view returns the named view, building it on first use. Unknown names are
// treated as seed element names. A request whose depth or related options
// differ from the served ones gets a view of its own, see [Server.viewKey].
func (s *Server) view(ws *workspace.Workspace, name string, opts pipeline.Options) (*workspace.View, error) {
	key := s.viewKey(name, opts)
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := ws.View(key); ok {
		return v, nil
	}
	opts.View = key
	if name == pipeline.DefaultOverview {
		return pipeline.BuildView(ws, opts)
	}
	seed, err := pipeline.FindElement(ws.Model(), name)
	if err != nil {
		return nil, err
	}
	opts.Seed = seed.Name
	return pipeline.BuildView(ws, opts)
}

// viewKey names the view built for name under opts. With the served depth
// and related options it is name itself; otherwise the options are appended,
// as in "OrderController@d2+related".
func (s *Server) viewKey(name string, opts pipeline.Options) string {
	depth := effectiveDepth(opts.Depth)
	if depth == effectiveDepth(s.opts.Depth) && opts.Related == s.opts.Related {
		return name
	}
	key := name + "@d" + strconv.Itoa(depth)
	if opts.Related {
		key += "+related"
	}
	return key
}

func effectiveDepth(d int) int {
	if d == 0 {
		return pipeline.DefaultDepth
	}
	return d
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Code: string(code), Message: errors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeElementNotFound, errors.ErrCodeViewNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidName,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidStyle:
		return http.StatusBadRequest
	case errors.ErrCodeDuplicateAlias, errors.ErrCodeUnresolvedReference:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs each request and reports it to the server hooks under
// its route pattern.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			hooks := observability.Server()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// The route pattern is only known once chi has routed the
			// request, so both hooks fire afterwards.
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			hooks.OnRequest(r.Context(), r.Method, route)
			hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}
