package workspace

import "github.com/matzehuels/archviews/pkg/model"

// View is a renderable subset of a model.
type View struct {
	Name        string
	Description string

	model    *model.Model
	elements []*model.Element
	index    map[model.ID]bool
}

// Model returns the model the view reads from.
func (v *View) Model() *model.Model { return v.model }

// Add inserts e. It reports false when e is nil, not registered with the
// model, or already present.
func (v *View) Add(e *model.Element) bool {
	if !v.model.Contains(e) || v.index[e.ID()] {
		return false
	}
	v.index[e.ID()] = true
	v.elements = append(v.elements, e)
	return true
}

// AddAll inserts every element and returns how many were new.
func (v *View) AddAll(elems ...*model.Element) int {
	n := 0
	for _, e := range elems {
		if v.Add(e) {
			n++
		}
	}
	return n
}

// AddChildren adds every model element whose parent is already in the view.
// Expansion is one level deep; call it again to descend further. It returns
// the number of elements added.
func (v *View) AddChildren() int {
	idx := v.model.ChildIndex()
	current := append([]*model.Element(nil), v.elements...)
	n := 0
	for _, e := range current {
		n += v.AddAll(idx[e.ID()]...)
	}
	return n
}

// AddChildrenDepth repeats [View.AddChildren] up to depth times, stopping
// early once nothing new is added.
func (v *View) AddChildrenDepth(depth int) int {
	total := 0
	for i := 0; i < depth; i++ {
		n := v.AddChildren()
		if n == 0 {
			break
		}
		total += n
	}
	return total
}

// AddRelated adds the elements on the other end of every relationship that
// touches an element of the view. It returns the number of elements added.
func (v *View) AddRelated() int {
	var related []*model.Element
	for _, r := range v.model.Relationships() {
		switch {
		case v.Contains(r.Source) && !v.Contains(r.Target):
			related = append(related, r.Target)
		case v.Contains(r.Target) && !v.Contains(r.Source):
			related = append(related, r.Source)
		}
	}
	return v.AddAll(related...)
}

// AddWhere adds every model element matching pred.
func (v *View) AddWhere(pred model.Predicate) int {
	return v.AddAll(v.model.Find(pred)...)
}

// Contains reports whether e is in the view.
func (v *View) Contains(e *model.Element) bool {
	return e != nil && v.index[e.ID()]
}

// Len returns the number of elements in the view.
func (v *View) Len() int { return len(v.elements) }

// Elements returns the view elements in insertion order.
func (v *View) Elements() []*model.Element {
	return append([]*model.Element(nil), v.elements...)
}

// Relationships returns the model relationships whose source and target are
// both in the view, in model order.
func (v *View) Relationships() []*model.Relationship {
	var out []*model.Relationship
	for _, r := range v.model.Relationships() {
		if v.Contains(r.Source) && v.Contains(r.Target) {
			out = append(out, r)
		}
	}
	return out
}

// Breadcrumb returns the ancestor chain of e from the top-level ancestor down
// to e itself. Ancestors outside the view are included.
func (v *View) Breadcrumb(e *model.Element) []*model.Element {
	if e == nil {
		return nil
	}
	return append(e.Ancestors(), e)
}
