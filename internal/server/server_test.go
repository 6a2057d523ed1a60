package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/graph"
	"github.com/matzehuels/archviews/pkg/observability"
	"github.com/matzehuels/archviews/pkg/pipeline"
	"github.com/matzehuels/archviews/pkg/render/diagram"
)

const shopManifest = `
name = "shop"

[[project]]
name = "Shop.Api"
executable = true

  [[project.class]]
  name = "OrderController"
  uses = [{ target = "IOrderStore", description = "reads orders" }]

[[project]]
name = "Shop.Core"

  [[project.interface]]
  name = "IOrderStore"
`

// rowEngine places nodes on a row and routes edges straight.
type rowEngine struct{}

func (rowEngine) Layout(_ context.Context, g *diagram.Graph) error {
	for i, n := range g.Nodes() {
		n.Center = diagram.Point{X: float64(i)*100 + 50, Y: 20}
		n.Width, n.Height = 80, 40
	}
	for _, e := range g.Edges() {
		s, _ := g.Node(e.Source)
		t, _ := g.Node(e.Target)
		e.Points = []diagram.Point{s.Center, s.Center, t.Center, t.Center}
	}
	g.Bounds = diagram.Rect{Width: float64(g.NodeCount()) * 100, Height: 40}
	g.LaidOut = true
	return nil
}

func newTestServer(t *testing.T, load bool) (*Server, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.toml")
	require.NoError(t, os.WriteFile(path, []byte(shopManifest), 0o644))

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	runner.Engine = rowEngine{}

	s := New(runner, pipeline.Options{Solution: path, Seed: "ignored"}, logger)
	if load {
		require.NoError(t, s.Load(context.Background()))
	}
	return s, &logs
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := get(t, s.Handler(), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestNotLoaded(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := get(t, s.Handler(), "/elements")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestElements(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	rec := get(t, h, "/elements")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var elems []Element
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &elems))
	names := make([]string, len(elems))
	for i, e := range elems {
		names[i] = e.Name
	}
	assert.ElementsMatch(t, []string{"Shop.Api", "Shop.Core", "OrderController", "IOrderStore"}, names)

	rec = get(t, h, "/elements?kind=interface")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &elems))
	require.Len(t, elems, 1)
	assert.Equal(t, "IOrderStore", elems[0].Name)
	assert.Equal(t, "Shop.Core", elems[0].Parent)
}

func TestViewFormats(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	rec := get(t, h, "/views/overview.json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "overview", l.View)
	assert.Len(t, l.Nodes, 4, "overview holds the projects and their children")

	rec = get(t, h, "/views/overview.dot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph")

	rec = get(t, h, "/views/OrderController.json?related=true&depth=0")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	l, err = graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, l.Nodes, 2)

	rec = get(t, h, "/views")
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"overview", "OrderController@d1+related"}, names)
}

func TestViewQueryParamsSelectSeparateViews(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	nodes := func(target string) int {
		t.Helper()
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		l, err := graph.UnmarshalLayout(rec.Body.Bytes())
		require.NoError(t, err)
		return len(l.Nodes)
	}

	assert.Equal(t, 1, nodes("/views/OrderController.json"))
	assert.Equal(t, 2, nodes("/views/OrderController.json?related=true"))
	assert.Equal(t, 1, nodes("/views/OrderController.json"), "the plain view is unchanged")
	assert.Equal(t, 2, nodes("/views/Shop.Api.json?depth=1"))
	assert.Equal(t, 3, nodes("/views/Shop.Api.json?depth=1&related=true"))

	rec := get(t, h, "/views")
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"OrderController", "OrderController@d1+related", "Shop.Api", "Shop.Api@d1+related"}, names)
}

func TestViewKey(t *testing.T) {
	s := &Server{opts: pipeline.Options{}}

	tests := []struct {
		depth   int
		related bool
		want    string
	}{
		{0, false, "Orders"},
		{1, false, "Orders"},
		{2, false, "Orders@d2"},
		{0, true, "Orders@d1+related"},
		{3, true, "Orders@d3+related"},
	}
	for _, tt := range tests {
		got := s.viewKey("Orders", pipeline.Options{Depth: tt.depth, Related: tt.related})
		assert.Equal(t, tt.want, got, "depth=%d related=%v", tt.depth, tt.related)
	}
}

func TestViewErrors(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/views/overview.gif", http.StatusBadRequest, "INVALID_FORMAT"},
		{"/views/overview", http.StatusBadRequest, "INVALID_FORMAT"},
		{"/views/Nowhere.svg", http.StatusNotFound, "ELEMENT_NOT_FOUND"},
		{"/views/overview.svg?depth=x", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestReload(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := s.Handler()

	manifest := shopManifest + `
  [[project.class]]
  name = "Order"
`
	require.NoError(t, os.WriteFile(s.opts.Solution, []byte(manifest), 0o644))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body["elements"])
}

type recordingServerHooks struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingServerHooks) OnRequest(_ context.Context, method, route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func (h *recordingServerHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = append(h.status, status)
}

func TestRequestHooksAndLogging(t *testing.T) {
	hooks := &recordingServerHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	s, logs := newTestServer(t, true)
	h := s.Handler()
	get(t, h, "/views/Shop.Api.svg")
	get(t, h, "/views/missing.svg")

	assert.Equal(t, []string{"GET /views/{file}", "GET /views/{file}"}, hooks.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, hooks.status)
	assert.True(t, strings.Contains(logs.String(), "path=/views/missing.svg"), logs.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor("VIEW_NOT_FOUND"))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor("DUPLICATE_ALIAS"))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor("TIMEOUT"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("LAYOUT_FAILED"))
}
