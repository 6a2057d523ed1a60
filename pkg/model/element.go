package model

import (
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ErrDetached is returned by [Element.Uses] when the element has not been
// registered with a model yet.
var ErrDetached = errors.New("element is not registered with a model")

// ID is the opaque, process-unique identity of an element or relationship.
type ID uuid.UUID

// NewID returns a fresh random identifier.
func NewID() ID { return ID(uuid.New()) }

// String returns the canonical UUID text form.
func (id ID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether id is the zero identifier.
func (id ID) IsZero() bool { return id == ID(uuid.Nil) }

// Kind classifies an element.
type Kind string

const (
	KindProject   Kind = "project"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindPerson    Kind = "person"
	KindSystem    Kind = "system"
	KindContainer Kind = "container"
	KindComponent Kind = "component"
)

// Location marks whether a person or system sits inside or outside the
// boundary of the documented solution.
type Location string

const (
	LocationUnspecified Location = ""
	LocationInternal    Location = "internal"
	LocationExternal    Location = "external"
)

// InfoKind keys the multi-valued information bag of an element.
type InfoKind string

const (
	// InfoURL holds links to documentation or source browsers. The first URL
	// becomes the clickable link of a rendered node.
	InfoURL InfoKind = "url"
	// InfoSource holds file positions where the element is declared.
	InfoSource InfoKind = "source"
	// InfoTechnology names frameworks or languages used by the element.
	InfoTechnology InfoKind = "technology"
)

// Information is an ordered multi-map of free-form facts about an element.
type Information map[InfoKind][]string

// Add appends values under kind, skipping values already present.
func (i Information) Add(kind InfoKind, values ...string) {
	for _, v := range values {
		if !slices.Contains(i[kind], v) {
			i[kind] = append(i[kind], v)
		}
	}
}

// Get returns the values stored under kind in insertion order.
func (i Information) Get(kind InfoKind) []string { return i[kind] }

// First returns the first value stored under kind, or "" if there is none.
func (i Information) First(kind InfoKind) string {
	if vs := i[kind]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Element is an identity-bearing node of the structural model.
//
// The zero value is not usable; construct elements with [NewElement] or
// [NewTyped] so that they receive an identifier.
type Element struct {
	id       ID
	kind     Kind
	model    *Model
	parent   *Element
	payload  any
	info     Information
	Name     string   // Display name shown in diagrams
	Location Location // Boundary placement for people and systems

	// Description is longer text that exporters place in notes or below
	// diagrams.
	Description string
}

// NewElement creates an element of the given kind with a fresh identifier.
func NewElement(kind Kind, name string) *Element {
	return &Element{
		id:   NewID(),
		kind: kind,
		info: Information{},
		Name: name,
	}
}

// ID returns the element identifier.
func (e *Element) ID() ID { return e.id }

// Kind returns the element kind.
func (e *Element) Kind() Kind { return e.kind }

// Model returns the model the element was first registered with, or nil.
func (e *Element) Model() *Model { return e.model }

// Parent returns the structural parent, or nil for top-level elements.
// The parent does not own the element.
func (e *Element) Parent() *Element { return e.parent }

// SetParent sets the structural parent.
func (e *Element) SetParent(p *Element) { e.parent = p }

// Payload returns the untyped provider payload, or nil.
func (e *Element) Payload() any { return e.payload }

// Info returns the information bag. The returned map is never nil and may be
// modified.
func (e *Element) Info() Information {
	if e.info == nil {
		e.info = Information{}
	}
	return e.info
}

// URL returns the first URL from the information bag.
func (e *Element) URL() string { return e.Info().First(InfoURL) }

// Alias returns the diagram key for the element: its name with all whitespace
// removed.
func (e *Element) Alias() string { return Alias(e.Name) }

// Ancestors returns the parent chain from the top-level ancestor down to the
// direct parent. Cycles in the parent chain are cut at the first repeat.
func (e *Element) Ancestors() []*Element {
	var chain []*Element
	seen := map[ID]bool{e.id: true}
	for p := e.parent; p != nil && !seen[p.id]; p = p.parent {
		seen[p.id] = true
		chain = append(chain, p)
	}
	slices.Reverse(chain)
	return chain
}

// Uses records that e depends on target in e's model.
func (e *Element) Uses(target *Element, description string) (*Relationship, error) {
	if e.model == nil {
		return nil, ErrDetached
	}
	return e.model.AddRelationship(e, target, description), nil
}

// String returns the element name.
func (e *Element) String() string { return e.Name }

// Alias derives a diagram key from name by stripping all whitespace.
func Alias(name string) string {
	return strings.Join(strings.Fields(name), "")
}

// Typed is an element view that exposes the provider payload with its static
// type. It shares identity, name and parent with the wrapped [Element].
type Typed[T comparable] struct {
	*Element
}

// NewTyped creates an element carrying data as its payload. Two typed
// elements with equal payloads describe the same entity and are merged by
// [Model.ResolveNodes].
func NewTyped[T comparable](kind Kind, name string, data T) Typed[T] {
	e := NewElement(kind, name)
	e.payload = data
	return Typed[T]{Element: e}
}

// As returns the typed view of e when its payload has type T.
func As[T comparable](e *Element) (Typed[T], bool) {
	if e == nil {
		return Typed[T]{}, false
	}
	if _, ok := e.payload.(T); !ok {
		return Typed[T]{}, false
	}
	return Typed[T]{Element: e}, true
}

// UserData returns the typed payload.
func (t Typed[T]) UserData() T {
	v, _ := t.payload.(T)
	return v
}

// Elements unwraps a slice of typed elements.
func Elements[T comparable](typed []Typed[T]) []*Element {
	out := make([]*Element, len(typed))
	for i, t := range typed {
		out[i] = t.Element
	}
	return out
}
