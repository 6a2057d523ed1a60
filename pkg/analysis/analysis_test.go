package analysis

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/model"
)

// shop builds:
//
//	Shop.Api (exe) -> Shop.Core
//	  OrderController -> IOrderStore (reads), -> Stripe (external)
//	Shop.Core
//	  Order, IOrderStore -> Order (returns)
func shop() (*Catalog, map[string]*Type) {
	c := NewCatalog()
	api := &Project{Name: "Shop.Api", Executable: true, URL: "https://example.com/api"}
	core := &Project{Name: "Shop.Core", Path: "src/core"}
	api.References = []*Project{core}

	types := map[string]*Type{
		"OrderController": {Name: "OrderController", Kind: KindClass, Project: api},
		"Order":           {Name: "Order", Kind: KindClass, Project: core, Source: "core/order.go:3"},
		"IOrderStore":     {Name: "IOrderStore", Kind: KindInterface, Project: core},
	}
	c.AddProject(api)
	c.AddProject(core)
	c.AddType(types["OrderController"])
	c.AddType(types["Order"])
	c.AddType(types["IOrderStore"])
	c.AddReference(types["OrderController"], Reference{Target: types["IOrderStore"], Description: "reads"})
	c.AddReference(types["OrderController"], Reference{TargetName: "Stripe", Description: "charges"})
	c.AddReference(types["IOrderStore"], Reference{Target: types["Order"], Description: "returns"})
	return c, types
}

func TestPredicates(t *testing.T) {
	c, _ := shop()

	assert.Len(t, c.Projects(AllProjects), 2)
	assert.Len(t, c.Projects(nil), 2)

	exe := c.Projects(ExecutableProjects)
	require.Len(t, exe, 1)
	assert.Equal(t, "Shop.Api", exe[0].Name)

	core := c.Projects(And(NameContains[*Project]("Core"), Not(ExecutableProjects)))
	require.Len(t, core, 1)
	assert.Equal(t, "Shop.Core", core[0].Name)

	assert.Empty(t, c.Projects(And(ExecutableProjects, NameExcludes[*Project]("Api"))))
	assert.Len(t, c.Projects(Or(ExecutableProjects, NameContains[*Project]("Core"))), 2)

	glob, err := NameMatches[*Type]("I*")
	require.NoError(t, err)
	ifaces := c.Interfaces(c.Projects(nil), glob)
	require.Len(t, ifaces, 1)
	assert.Empty(t, c.Classes(c.Projects(nil), glob))

	_, err = NameMatches[*Type]("[")
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	c, types := shop()

	classes := c.Classes(c.Projects(nil), AllTypes)
	require.Len(t, classes, 2)
	assert.Equal(t, "OrderController", classes[0].Name)

	onlyCore := c.Projects(NameContains[*Project]("Core"))
	assert.Equal(t, []*Type{types["Order"]}, c.Classes(onlyCore, nil))

	refs := c.RelationshipsFrom(types["OrderController"])
	require.Len(t, refs, 2)
	assert.True(t, refs[0].Resolved())
	assert.Equal(t, "IOrderStore", refs[0].TargetName, "target name filled from target")
	assert.False(t, refs[1].Resolved())

	p, ok := c.Project("Shop.Core")
	require.True(t, ok)
	got, ok := c.Lookup(p, "Order")
	require.True(t, ok)
	assert.Same(t, types["Order"], got)
	_, ok = c.Lookup(p, "OrderController")
	assert.False(t, ok)
	got, ok = c.LookupAny("OrderController")
	require.True(t, ok)
	assert.Same(t, types["OrderController"], got)

	c.AddType(types["Order"])
	assert.Len(t, c.Classes(c.Projects(nil), nil), 2, "adding a type twice is a no-op")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	c, _ := shop()

	ok := &Source{Name: "ok", Open: func(context.Context, string) (Provider, error) { return c, nil }}
	p, err := Open(ctx, ok, "x")
	require.NoError(t, err)
	assert.Same(t, c, p)

	boom := &Source{Name: "boom", Open: func(context.Context, string) (Provider, error) {
		return nil, stderrors.New("disk on fire")
	}}
	_, err = Open(ctx, boom, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLoadFailure))
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = Open(ctx, nil, "x")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Open(canceled, ok, "x")
	assert.True(t, errors.Is(err, errors.ErrCodeLoadFailure))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindAndDetect(t *testing.T) {
	a := &Source{Name: "a", Aliases: []string{"alpha"}, Detect: func(p string) bool { return p == "a.sln" }}
	b := &Source{Name: "b"}
	all := []*Source{a, b}

	assert.Same(t, a, Find("alpha", all))
	assert.Same(t, b, Find("b", all))
	assert.Nil(t, Find("c", all))
	assert.Same(t, a, Detect("a.sln", all))
	assert.Nil(t, Detect("b.sln", all))
}

func TestPopulate(t *testing.T) {
	c, types := shop()
	m := model.New()

	res := Populate(m, c, Options{ProjectReferences: true})
	require.Len(t, res.Projects, 2)
	require.Len(t, res.Types, 3)
	assert.Equal(t, 3, res.Relationships)
	assert.Equal(t, 5, m.Len())

	api, core := res.Projects[0], res.Projects[1]
	assert.Equal(t, model.KindProject, api.Kind())
	assert.Equal(t, "https://example.com/api", api.URL())
	assert.Equal(t, []string{"src/core"}, core.Info().Get(model.InfoSource))

	resolution := m.ResolveNodes()
	require.Len(t, resolution.Warnings, 1, "the external Stripe reference")
	assert.Equal(t, model.WarnUnresolvedTarget, resolution.Warnings[0].Kind)
	assert.Equal(t, "Stripe", resolution.Warnings[0].Reference)

	controller, ok := m.FindByName("OrderController")
	require.True(t, ok)
	assert.Same(t, api.Element, controller.Parent())
	assert.Equal(t, model.KindClass, controller.Kind())

	store, ok := m.FindByName("IOrderStore")
	require.True(t, ok)
	assert.Equal(t, model.KindInterface, store.Kind())
	typed, ok := model.As[*Type](store)
	require.True(t, ok)
	assert.Same(t, types["IOrderStore"], typed.UserData())

	rels := m.RelationshipsFrom(controller, nil)
	require.Len(t, rels, 1)
	assert.Same(t, store, rels[0].Target, "target wrapper folded into the registered element")
	assert.Equal(t, "reads", rels[0].Label)

	projRels := m.RelationshipsFrom(api.Element, nil)
	require.Len(t, projRels, 1)
	assert.Same(t, core.Element, projRels[0].Target)

	assert.False(t, m.ResolveNodes().Changed())
}

func TestPopulateIncludeExternal(t *testing.T) {
	c, _ := shop()
	m := model.New()

	res := Populate(m, c, Options{IncludeExternal: true})
	require.Len(t, res.External, 1)
	stripe := res.External[0]
	assert.Equal(t, model.KindSystem, stripe.Kind())
	assert.Equal(t, model.LocationExternal, stripe.Location)
	assert.Equal(t, External("Stripe"), stripe.UserData())

	resolution := m.ResolveNodes()
	assert.Empty(t, resolution.Warnings)
	controller, _ := m.FindByName("OrderController")
	assert.Len(t, m.RelationshipsFrom(controller, nil), 2)
}

func TestPopulateFiltered(t *testing.T) {
	c, _ := shop()
	m := model.New()

	res := Populate(m, c, Options{Projects: ExecutableProjects})
	require.Len(t, res.Projects, 1)
	require.Len(t, res.Types, 1)

	resolution := m.ResolveNodes()
	assert.Equal(t, 2, resolution.DroppedRelationships, "IOrderStore and Stripe are outside the selection")
	assert.Len(t, m.Relationships(), 0)
}
