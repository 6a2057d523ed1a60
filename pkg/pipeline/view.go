package pipeline

import (
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/workspace"
)

// BuildView returns the view described by opts, creating it on first use.
//
// With a seed the view starts at the element of that name; without one it
// starts at every top-level element. Children are then added opts.Depth
// levels deep, and with opts.Related the other ends of touching
// relationships are pulled in.
func BuildView(ws *workspace.Workspace, opts Options) (*workspace.View, error) {
	opts.SetDefaults()
	if err := opts.ValidateForView(); err != nil {
		return nil, err
	}
	name := opts.ViewName()
	if v, ok := ws.View(name); ok {
		return v, nil
	}

	m := ws.Model()
	var v *workspace.View
	if opts.Seed != "" {
		seed, err := FindElement(m, opts.Seed)
		if err != nil {
			return nil, err
		}
		v = ws.CreateView(name, seed)
		v.Description = seed.Description
	} else {
		v = ws.CreateViewWhere(name, topLevel)
	}
	v.AddChildrenDepth(opts.Depth)
	if opts.Related {
		v.AddRelated()
	}
	return v, nil
}

// FindElement looks an element up by name, then by alias.
func FindElement(m *model.Model, name string) (*model.Element, error) {
	if e, ok := m.FindByName(name); ok {
		return e, nil
	}
	alias := model.Alias(name)
	if found := m.Find(func(e *model.Element) bool { return e.Alias() == alias }); len(found) > 0 {
		return found[0], nil
	}
	return nil, errors.New(errors.ErrCodeElementNotFound, "element not found: %s", name)
}

func topLevel(e *model.Element) bool { return e.Parent() == nil }
