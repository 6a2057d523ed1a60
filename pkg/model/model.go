package model

// Predicate selects elements.
type Predicate func(*Element) bool

// RelationshipPredicate selects relationships.
type RelationshipPredicate func(*Relationship) bool

// OfKind returns a predicate matching elements of any of the given kinds.
func OfKind(kinds ...Kind) Predicate {
	return func(e *Element) bool {
		for _, k := range kinds {
			if e.kind == k {
				return true
			}
		}
		return false
	}
}

// Relationship is a directed, labelled edge between two elements. It is owned
// by the model, not by either endpoint.
type Relationship struct {
	id          ID
	Source      *Element
	Target      *Element
	Label       string // Edge label; empty means unlabelled
	Description string
}

// NewRelationship creates a relationship that is not yet registered with a
// model. The label defaults to the description.
func NewRelationship(source, target *Element, description string) *Relationship {
	return &Relationship{
		id:          NewID(),
		Source:      source,
		Target:      target,
		Label:       description,
		Description: description,
	}
}

// ID returns the relationship identifier.
func (r *Relationship) ID() ID { return r.id }

// Model is the authoritative graph of elements and relationships for one
// analysed solution.
//
// The zero value is not usable; use [New].
type Model struct {
	elements      map[ID]*Element
	order         []*Element
	relationships []*Relationship
	relIndex      map[ID]bool
}

// New creates an empty model.
func New() *Model {
	return &Model{
		elements: make(map[ID]*Element),
		relIndex: make(map[ID]bool),
	}
}

// Add registers e. It reports false when e is nil or already registered.
// Elements registered with no owning model become owned by m.
func (m *Model) Add(e *Element) bool {
	if e == nil {
		return false
	}
	if _, ok := m.elements[e.id]; ok {
		return false
	}
	if e.model == nil {
		e.model = m
	}
	m.elements[e.id] = e
	m.order = append(m.order, e)
	return true
}

// AddAll registers every element and returns how many were new.
func (m *Model) AddAll(elems ...*Element) int {
	n := 0
	for _, e := range elems {
		if m.Add(e) {
			n++
		}
	}
	return n
}

// AddTyped registers a slice of typed elements and returns how many were new.
func AddTyped[T comparable](m *Model, elems []Typed[T]) int {
	return m.AddAll(Elements(elems)...)
}

// AddRelationship creates and registers a relationship from source to target.
// Neither endpoint has to be registered yet; endpoints are reconciled by
// [Model.ResolveNodes].
func (m *Model) AddRelationship(source, target *Element, description string) *Relationship {
	r := NewRelationship(source, target, description)
	m.addRelationship(r)
	return r
}

// AddRelationships registers relationships built with [NewRelationship].
// Relationships already present are skipped.
func (m *Model) AddRelationships(rels ...*Relationship) int {
	n := 0
	for _, r := range rels {
		if r != nil && m.addRelationship(r) {
			n++
		}
	}
	return n
}

func (m *Model) addRelationship(r *Relationship) bool {
	if m.relIndex[r.id] {
		return false
	}
	m.relIndex[r.id] = true
	m.relationships = append(m.relationships, r)
	return true
}

// AddPerson registers a person who interacts with the solution.
func (m *Model) AddPerson(name, description string, loc Location) *Element {
	e := NewElement(KindPerson, name)
	e.Description = description
	e.Location = loc
	m.Add(e)
	return e
}

// AddSystem registers a software system.
func (m *Model) AddSystem(name, description string, loc Location) *Element {
	e := NewElement(KindSystem, name)
	e.Description = description
	e.Location = loc
	m.Add(e)
	return e
}

// Len returns the number of registered elements.
func (m *Model) Len() int { return len(m.order) }

// Contains reports whether e is registered.
func (m *Model) Contains(e *Element) bool {
	if e == nil {
		return false
	}
	_, ok := m.elements[e.id]
	return ok
}

// Element returns the registered element with the given identifier.
func (m *Model) Element(id ID) (*Element, bool) {
	e, ok := m.elements[id]
	return e, ok
}

// Elements returns all registered elements in registration order.
func (m *Model) Elements() []*Element {
	return append([]*Element(nil), m.order...)
}

// Find returns the registered elements matching pred in registration order.
// A nil predicate matches everything.
func (m *Model) Find(pred Predicate) []*Element {
	var out []*Element
	for _, e := range m.order {
		if pred == nil || pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// FindByName returns the first registered element with the given name.
func (m *Model) FindByName(name string) (*Element, bool) {
	for _, e := range m.order {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Relationships returns all registered relationships in registration order.
func (m *Model) Relationships() []*Relationship {
	return append([]*Relationship(nil), m.relationships...)
}

// RelationshipsFrom returns the relationships whose source is e and that
// match pred. A nil predicate matches everything.
func (m *Model) RelationshipsFrom(e *Element, pred RelationshipPredicate) []*Relationship {
	var out []*Relationship
	for _, r := range m.relationships {
		if r.Source == e && (pred == nil || pred(r)) {
			out = append(out, r)
		}
	}
	return out
}

// RelationshipsTo returns the relationships whose target is e and that match
// pred. A nil predicate matches everything.
func (m *Model) RelationshipsTo(e *Element, pred RelationshipPredicate) []*Relationship {
	var out []*Relationship
	for _, r := range m.relationships {
		if r.Target == e && (pred == nil || pred(r)) {
			out = append(out, r)
		}
	}
	return out
}

// ChildIndex returns registered elements grouped by the identifier of their
// parent. Children appear in registration order.
func (m *Model) ChildIndex() map[ID][]*Element {
	idx := make(map[ID][]*Element)
	for _, e := range m.order {
		if e.parent != nil {
			idx[e.parent.id] = append(idx[e.parent.id], e)
		}
	}
	return idx
}

// Children returns the registered elements whose parent is e.
func (m *Model) Children(e *Element) []*Element {
	if e == nil {
		return nil
	}
	return m.ChildIndex()[e.id]
}
