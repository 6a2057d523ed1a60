package model

import (
	"fmt"
	"reflect"
)

// WarningKind classifies a reference that could not be resolved.
type WarningKind string

const (
	// WarnUnresolvedSource: a relationship source is not a live element.
	WarnUnresolvedSource WarningKind = "unresolved_source"
	// WarnUnresolvedTarget: a relationship target is not a live element.
	WarnUnresolvedTarget WarningKind = "unresolved_target"
	// WarnUnresolvedParent: a parent reference is not a live element.
	WarnUnresolvedParent WarningKind = "unresolved_parent"
	// WarnMergedSelfLoop: merging duplicates turned a relationship into a
	// self-loop.
	WarnMergedSelfLoop WarningKind = "merged_self_loop"
)

// Warning reports a reference dropped during resolution. Warnings never stop
// resolution.
type Warning struct {
	Kind         WarningKind
	Element      *Element      // Element owning the dropped reference, if any
	Relationship *Relationship // Dropped relationship, if any
	Reference    string        // Name of the unmatched endpoint or parent
}

func (w Warning) String() string {
	switch {
	case w.Relationship != nil:
		return fmt.Sprintf("%s: %s -> %s (%s)", w.Kind, nameOf(w.Relationship.Source), nameOf(w.Relationship.Target), w.Reference)
	case w.Element != nil:
		return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Element.Name, w.Reference)
	default:
		return fmt.Sprintf("%s: %s", w.Kind, w.Reference)
	}
}

func nameOf(e *Element) string {
	if e == nil {
		return "<nil>"
	}
	return e.Name
}

// Resolution summarises one [Model.ResolveNodes] pass.
type Resolution struct {
	Merged                 int // Duplicate elements folded into a canonical element
	Rewritten              int // Endpoint and parent references redirected
	DroppedRelationships   int // Relationships removed as unresolvable
	CollapsedRelationships int // Identical relationships removed after merging
	Warnings               []Warning
}

// Changed reports whether the pass modified the model.
func (r Resolution) Changed() bool {
	return r.Merged+r.Rewritten+r.DroppedRelationships+r.CollapsedRelationships > 0 || len(r.Warnings) > 0
}

// ResolveNodes reconciles deferred references after bulk loading.
//
// Elements whose payloads are equal describe the same entity. The first
// registered one is canonical; later ones are unregistered and every
// relationship endpoint and parent reference pointing at them is redirected to
// the canonical element. Unregistered endpoints whose payload matches a
// canonical element are redirected the same way. Name and description of the
// canonical element win; information entries of duplicates are appended.
//
// Relationships whose endpoints remain unregistered are dropped, as are
// self-loops produced by merging, and parent references that cannot be matched
// are cleared. Each such drop is reported as a [Warning]. Relationships that
// become identical (same endpoints and description) are collapsed.
//
// Payloads that cannot be compared, such as slices held in an interface,
// carry no identity and are never merged.
//
// Running ResolveNodes again without adding data changes nothing.
func (m *Model) ResolveNodes() Resolution {
	var res Resolution

	canonical := make(map[any]*Element)
	kept := m.order[:0:0]
	for _, e := range m.order {
		key, ok := identity(e)
		if !ok {
			kept = append(kept, e)
			continue
		}
		c, dup := canonical[key]
		if !dup {
			canonical[key] = e
			kept = append(kept, e)
			continue
		}
		for kind, values := range e.info {
			c.Info().Add(kind, values...)
		}
		delete(m.elements, e.id)
		res.Merged++
	}
	m.order = kept

	live := func(e *Element) (*Element, bool) {
		if e == nil {
			return nil, false
		}
		if _, ok := m.elements[e.id]; ok {
			return e, true
		}
		if key, ok := identity(e); ok {
			if c, ok := canonical[key]; ok {
				return c, true
			}
		}
		return nil, false
	}

	for _, e := range m.order {
		if e.parent == nil {
			continue
		}
		p, ok := live(e.parent)
		switch {
		case !ok:
			res.Warnings = append(res.Warnings, Warning{Kind: WarnUnresolvedParent, Element: e, Reference: e.parent.Name})
			e.parent = nil
		case p != e.parent:
			e.parent = p
			res.Rewritten++
		}
	}

	type relKey struct {
		source, target ID
		description    string
	}
	seen := make(map[relKey]bool)
	rels := m.relationships[:0:0]
	for _, r := range m.relationships {
		src, srcOK := live(r.Source)
		tgt, tgtOK := live(r.Target)
		if !srcOK || !tgtOK {
			w := Warning{Kind: WarnUnresolvedTarget, Relationship: r, Reference: nameOf(r.Target)}
			if !srcOK {
				w.Kind, w.Reference = WarnUnresolvedSource, nameOf(r.Source)
			}
			res.Warnings = append(res.Warnings, w)
			res.DroppedRelationships++
			delete(m.relIndex, r.id)
			continue
		}
		if src == tgt && r.Source != r.Target {
			res.Warnings = append(res.Warnings, Warning{Kind: WarnMergedSelfLoop, Relationship: r, Reference: src.Name})
			res.DroppedRelationships++
			delete(m.relIndex, r.id)
			continue
		}
		if src != r.Source {
			r.Source = src
			res.Rewritten++
		}
		if tgt != r.Target {
			r.Target = tgt
			res.Rewritten++
		}
		k := relKey{src.id, tgt.id, r.Description}
		if seen[k] {
			res.CollapsedRelationships++
			delete(m.relIndex, r.id)
			continue
		}
		seen[k] = true
		rels = append(rels, r)
	}
	m.relationships = rels

	return res
}

// identity returns the payload of e as a map key, if it has a comparable one.
func identity(e *Element) (any, bool) {
	if e.payload == nil || !reflect.ValueOf(e.payload).Comparable() {
		return nil, false
	}
	return e.payload, true
}
