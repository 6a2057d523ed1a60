package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct {
	project string
	name    string
}

func TestAlias(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "OrderService", want: "OrderService"},
		{name: "spaces", in: "Employee Pharmacy", want: "EmployeePharmacy"},
		{name: "tabs and newlines", in: " Shop\tApi\n", want: "ShopApi"},
		{name: "generic", in: "List<Order >", want: "List<Order>"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Alias(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Alias(tt.in), "alias must be stable")
			assert.False(t, strings.ContainsAny(got, " \t\n"))
		})
	}
}

func TestNewElementIdentity(t *testing.T) {
	a := NewElement(KindClass, "Same")
	b := NewElement(KindClass, "Same")

	assert.False(t, a.ID().IsZero())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.Alias(), b.Alias())
}

func TestModelAddIdempotent(t *testing.T) {
	m := New()
	e := NewElement(KindProject, "Shop")

	assert.True(t, m.Add(e))
	assert.False(t, m.Add(e))
	assert.Equal(t, 1, m.Len())
	assert.Same(t, m, e.Model())

	assert.Equal(t, 0, m.AddAll(e, nil))
	assert.Equal(t, 1, m.Len())
}

func TestModelAddOrderIndependent(t *testing.T) {
	a := NewElement(KindClass, "A")
	b := NewElement(KindClass, "B")
	c := NewElement(KindClass, "C")
	b.SetParent(a)
	c.SetParent(a)

	m1 := New()
	m1.AddAll(a, b, c)
	m2 := New()
	m2.AddAll(c, b, a)

	assert.ElementsMatch(t, m1.Elements(), m2.Elements())
	assert.ElementsMatch(t, m1.Children(a), m2.Children(a))
}

func TestModelQueries(t *testing.T) {
	m := New()
	proj := NewElement(KindProject, "Shop")
	svc := NewElement(KindClass, "OrderService")
	repo := NewElement(KindInterface, "IOrderRepository")
	svc.SetParent(proj)
	repo.SetParent(proj)
	m.AddAll(proj, svc, repo)

	uses := m.AddRelationship(svc, repo, "uses")
	m.AddRelationship(svc, proj, "lives in")

	assert.Equal(t, []*Element{svc}, m.Find(OfKind(KindClass)))
	assert.Len(t, m.Find(nil), 3)
	assert.Equal(t, []*Element{svc, repo}, m.Children(proj))

	from := m.RelationshipsFrom(svc, func(r *Relationship) bool { return r.Description == "uses" })
	require.Len(t, from, 1)
	assert.Same(t, uses, from[0])
	assert.Equal(t, "uses", uses.Label)
	assert.Len(t, m.RelationshipsFrom(svc, nil), 2)
	assert.Len(t, m.RelationshipsTo(repo, nil), 1)

	found, ok := m.FindByName("IOrderRepository")
	require.True(t, ok)
	assert.Same(t, repo, found)
}

func TestElementUses(t *testing.T) {
	detached := NewElement(KindPerson, "Employee")
	_, err := detached.Uses(NewElement(KindSystem, "NControl"), "uses")
	assert.ErrorIs(t, err, ErrDetached)

	m := New()
	user := m.AddPerson("Employee Pharmacy", "An employee in a pharmacy", LocationExternal)
	sys := m.AddSystem("NControl", "Medication system", LocationInternal)

	r, err := user.Uses(sys, "uses")
	require.NoError(t, err)
	assert.Same(t, user, r.Source)
	assert.Same(t, sys, r.Target)
	assert.Len(t, m.Relationships(), 1)
}

func TestAddRelationshipsSkipsDuplicates(t *testing.T) {
	m := New()
	r := NewRelationship(NewElement(KindClass, "A"), NewElement(KindClass, "B"), "")

	assert.Equal(t, 1, m.AddRelationships(r, nil))
	assert.Equal(t, 0, m.AddRelationships(r))
	assert.Len(t, m.Relationships(), 1)
}

func TestTyped(t *testing.T) {
	h := handle{project: "Shop", name: "Order"}
	typed := NewTyped(KindClass, "Order", h)

	assert.Equal(t, h, typed.UserData())

	back, ok := As[handle](typed.Element)
	require.True(t, ok)
	assert.Equal(t, h, back.UserData())

	_, ok = As[string](typed.Element)
	assert.False(t, ok)
	_, ok = As[handle](nil)
	assert.False(t, ok)

	parent := NewElement(KindProject, "Shop")
	typed.SetParent(parent)
	assert.Same(t, parent, back.Parent(), "typed views share one parent")
}

func TestInformation(t *testing.T) {
	e := NewElement(KindSystem, "NControl")
	assert.Equal(t, "", e.URL())

	e.Info().Add(InfoURL, "https://a.example", "https://b.example", "https://a.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, e.Info().Get(InfoURL))
	assert.Equal(t, "https://a.example", e.URL())
}

func TestAncestors(t *testing.T) {
	sys := NewElement(KindSystem, "Shop")
	proj := NewElement(KindProject, "Shop.Api")
	cls := NewElement(KindClass, "OrderController")
	proj.SetParent(sys)
	cls.SetParent(proj)

	assert.Equal(t, []*Element{sys, proj}, cls.Ancestors())
	assert.Empty(t, sys.Ancestors())

	sys.SetParent(cls)
	assert.Len(t, cls.Ancestors(), 2, "cycles are cut")
}
