// Package workspace owns a model and the views composed from it.
//
// A [Workspace] holds exactly one [model.Model] for its whole lifetime. Views
// are subsets of that model: a set of elements plus every model relationship
// whose two endpoints are both in the set.
//
//	ws := workspace.New()
//	m := ws.Model()
//	// ... populate m, then m.ResolveNodes()
//	v := ws.CreateView("Shop", shop)
//	v.AddChildren()
//
// Views only grow. Their relationship set is recomputed from the model on
// every call, so it never goes stale after a mutation.
package workspace

import "github.com/matzehuels/archviews/pkg/model"

// Workspace is the container for one model and its views.
//
// The zero value is not usable; use [New].
type Workspace struct {
	model *model.Model
	views []*View
}

// New creates a workspace with an empty model.
func New() *Workspace {
	return &Workspace{model: model.New()}
}

// FromModel creates a workspace around an existing model, typically one
// decoded from a cache. A nil model yields an empty workspace.
func FromModel(m *model.Model) *Workspace {
	if m == nil {
		m = model.New()
	}
	return &Workspace{model: m}
}

// Model returns the workspace model. Every call returns the same instance.
func (w *Workspace) Model() *model.Model { return w.model }

// CreateView creates a view seeded with the given elements. Seeds that are not
// registered with the workspace model are ignored.
func (w *Workspace) CreateView(name string, seeds ...*model.Element) *View {
	v := &View{
		Name:  name,
		model: w.model,
		index: make(map[model.ID]bool),
	}
	v.AddAll(seeds...)
	w.views = append(w.views, v)
	return v
}

// CreateViewWhere creates a view seeded with every model element matching pred.
func (w *Workspace) CreateViewWhere(name string, pred model.Predicate) *View {
	return w.CreateView(name, w.model.Find(pred)...)
}

// Views returns the views created so far, in creation order.
func (w *Workspace) Views() []*View {
	return append([]*View(nil), w.views...)
}

// View returns the first view with the given name.
func (w *Workspace) View(name string) (*View, bool) {
	for _, v := range w.views {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}
