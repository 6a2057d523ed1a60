package golang

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/errors"
)

func TestSynopsis(t *testing.T) {
	tests := map[string]string{
		"":                                      "",
		"Package orders manages orders.":        "Package orders manages orders.",
		"Package orders\nmanages orders. More.": "Package orders manages orders.",
		"No trailing period":                    "No trailing period",
		"Uses v1.2 internally. Second.":         "Uses v1.2 internally.",
	}
	for in, want := range tests {
		assert.Equal(t, want, Synopsis(in), in)
	}
}

func TestIsStdlib(t *testing.T) {
	assert.True(t, isStdlib("context"))
	assert.True(t, isStdlib("net/http"))
	assert.False(t, isStdlib("github.com/google/uuid"))
	assert.False(t, isStdlib("example.com/shop/orders"))
}

func checkSource(t *testing.T, src string) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "x.go", src, 0)
	require.NoError(t, err)
	pkg, err := (&types.Config{}).Check("x", fset, []*ast.File{f}, nil)
	require.NoError(t, err)
	return pkg
}

func TestNamedIn(t *testing.T) {
	pkg := checkSource(t, `package x
type A struct{}
type B struct{}
type Box[T any] struct{ v T }
type S struct {
	a  *A
	bs map[string][]B
	f  func(A) (*B, error)
	g  Box[*A]
	n  int
}`)
	st := pkg.Scope().Lookup("S").Type().Underlying().(*types.Struct)

	names := func(i int) []string {
		var out []string
		for _, n := range namedIn(st.Field(i).Type()) {
			out = append(out, n.Obj().Name())
		}
		return out
	}
	assert.Equal(t, []string{"A"}, names(0))
	assert.Equal(t, []string{"B"}, names(1))
	assert.Equal(t, []string{"A", "B", "error"}, names(2))
	assert.Equal(t, []string{"Box", "A"}, names(3))
	assert.Empty(t, names(4))
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Source.Detect(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))
	assert.True(t, Source.Detect(dir))
	assert.True(t, Source.Detect(filepath.Join(dir, "go.mod")))
	assert.Equal(t, dir, moduleDir(filepath.Join(dir, "go.mod")))
	assert.True(t, Source.Matches("golang"))
}

func TestOpenRejectsPatterns(t *testing.T) {
	_, err := Open(context.Background(), Config{Dir: t.TempDir(), Patterns: []string{"-toolexec=x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

var shopModule = map[string]string{
	"go.mod": "module example.com/shop\n\ngo 1.22\n",
	"orders/orders.go": `// Package orders manages orders. It stores them.
package orders

import "context"

// Order is a customer order.
type Order struct {
	ID    string
	Items []Item
}

type Item struct{ SKU string }

// Store persists orders.
type Store interface {
	Get(ctx context.Context, id string) (*Order, error)
}

type Service struct {
	Store Store
}

func (s *Service) Place(o Order) error { return nil }

type memStore struct{}

type MemStore struct{ orders map[string]*Order }

func (m *MemStore) Get(ctx context.Context, id string) (*Order, error) { return m.orders[id], nil }
`,
	"cmd/shop/main.go": `package main

import "example.com/shop/orders"

func main() { _ = orders.Service{} }
`,
}

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func requireGo(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping go/packages test in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
}

func refStrings(c *analysis.Catalog, typ *analysis.Type) []string {
	var out []string
	for _, r := range c.RelationshipsFrom(typ) {
		name := r.TargetName
		if r.Target != nil {
			name = r.Target.Name
		}
		out = append(out, r.Description+" "+name)
	}
	return out
}

func TestOpenModule(t *testing.T) {
	requireGo(t)
	dir := writeModule(t, shopModule)

	c, err := Open(context.Background(), Config{Dir: dir, URLBase: "https://pkg.go.dev/"})
	require.NoError(t, err)

	projects := c.Projects(nil)
	require.Len(t, projects, 2)
	cmd, orders := projects[0], projects[1]
	assert.Equal(t, "cmd/shop", cmd.Name)
	assert.True(t, cmd.Executable)
	assert.Equal(t, []*analysis.Project{orders}, cmd.References)
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, "orders", orders.Path)
	assert.False(t, orders.Executable)
	assert.Equal(t, "Package orders manages orders.", orders.Description)
	assert.Equal(t, "https://pkg.go.dev/example.com/shop/orders", orders.URL)

	byName := map[string]*analysis.Type{}
	var classNames []string
	for _, typ := range c.Classes(projects, nil) {
		byName[typ.Name] = typ
		classNames = append(classNames, typ.Name)
	}
	assert.Equal(t, []string{"orders.Item", "orders.MemStore", "orders.Order", "orders.Service"}, classNames)

	ifaces := c.Interfaces(projects, nil)
	require.Len(t, ifaces, 1)
	store := ifaces[0]
	assert.Equal(t, "orders.Store", store.Name)
	assert.Equal(t, "Store persists orders.", store.Description)
	assert.Equal(t, "https://pkg.go.dev/example.com/shop/orders#Store", store.URL)

	order := byName["orders.Order"]
	assert.True(t, strings.HasPrefix(order.Source, "orders/orders.go:"), order.Source)
	assert.Equal(t, "Order is a customer order.", order.Description)

	assert.Equal(t, []string{"field orders.Item"}, refStrings(c, order))
	assert.Equal(t, []string{"field orders.Store", "parameter orders.Order"}, refStrings(c, byName["orders.Service"]))
	assert.Equal(t, []string{"field orders.Order", "returns orders.Order", "implements orders.Store"}, refStrings(c, byName["orders.MemStore"]))
	assert.Equal(t, []string{"returns orders.Order"}, refStrings(c, store))
}

func TestOpenModuleStdlib(t *testing.T) {
	requireGo(t)
	dir := writeModule(t, shopModule)

	c, err := Open(context.Background(), Config{Dir: dir, Patterns: []string{"./orders"}, IncludeStdlib: true})
	require.NoError(t, err)
	ifaces := c.Interfaces(c.Projects(nil), nil)
	require.Len(t, ifaces, 1)
	refs := c.RelationshipsFrom(ifaces[0])
	require.Len(t, refs, 2)
	assert.Nil(t, refs[0].Target)
	assert.Equal(t, "context.Context", refs[0].TargetName)
	assert.Equal(t, RefParameter, refs[0].Description)
}

func TestOpenModuleLoadFailure(t *testing.T) {
	requireGo(t)
	dir := writeModule(t, map[string]string{
		"go.mod":    "module example.com/broken\n\ngo 1.22\n",
		"broken.go": "package broken\n\nfunc f() int { return \"x\" }\n",
	})

	_, err := analysis.Open(context.Background(), Source, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLoadFailure), "got %v", err)
}
