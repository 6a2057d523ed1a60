package analysis

import (
	"github.com/matzehuels/archviews/pkg/model"
)

// External is the payload of elements created for types declared outside
// the analysed projects.
type External string

// Options controls [Populate].
type Options struct {
	Projects Predicate[*Project] // nil selects every project
	Types    Predicate[*Type]    // nil selects every type

	// ProjectReferences adds a relationship per project reference.
	ProjectReferences bool
	// IncludeExternal registers external reference targets as external
	// system elements instead of leaving them unresolved.
	IncludeExternal bool
}

// Result lists the elements created by [Populate].
type Result struct {
	Projects      []model.Typed[*Project]
	Types         []model.Typed[*Type]
	External      []model.Typed[External]
	Relationships int
}

// Populate adds the selected projects, their classes and interfaces and the
// references between them to m.
//
// Reference targets are added as new, unregistered wrappers around the target
// handle. Call [model.Model.ResolveNodes] afterwards to fold them into the
// registered elements and to drop references that cannot be resolved.
func Populate(m *model.Model, p Provider, opts Options) Result {
	var res Result

	projects := p.Projects(opts.Projects)
	projElems := make(map[*Project]*model.Element, len(projects))
	for _, proj := range projects {
		e := projectElement(proj)
		m.Add(e.Element)
		projElems[proj] = e.Element
		res.Projects = append(res.Projects, e)
	}

	types := append(p.Classes(projects, opts.Types), p.Interfaces(projects, opts.Types)...)
	for _, t := range types {
		e := typeElement(t)
		e.SetParent(projElems[t.Project])
		m.Add(e.Element)
		res.Types = append(res.Types, e)
	}

	external := make(map[string]model.Typed[External])
	for _, src := range res.Types {
		for _, ref := range p.RelationshipsFrom(src.UserData()) {
			var target *model.Element
			switch {
			case ref.Target != nil:
				target = typeElement(ref.Target).Element
			case opts.IncludeExternal:
				ext, ok := external[ref.TargetName]
				if !ok {
					ext = model.NewTyped(model.KindSystem, ref.TargetName, External(ref.TargetName))
					ext.Location = model.LocationExternal
					m.Add(ext.Element)
					external[ref.TargetName] = ext
					res.External = append(res.External, ext)
				}
				target = ext.Element
			default:
				// Left dangling for the resolver to report.
				target = model.NewElement(model.KindClass, ref.TargetName)
			}
			m.AddRelationship(src.Element, target, ref.Description)
			res.Relationships++
		}
	}

	if opts.ProjectReferences {
		for _, proj := range projects {
			for _, dep := range proj.References {
				m.AddRelationship(projElems[proj], projectElement(dep).Element, "references")
				res.Relationships++
			}
		}
	}
	return res
}

func projectElement(p *Project) model.Typed[*Project] {
	e := model.NewTyped(model.KindProject, p.Name, p)
	e.Description = p.Description
	if p.URL != "" {
		e.Info().Add(model.InfoURL, p.URL)
	}
	if p.Path != "" {
		e.Info().Add(model.InfoSource, p.Path)
	}
	return e
}

func typeElement(t *Type) model.Typed[*Type] {
	kind := model.KindClass
	if t.Kind == KindInterface {
		kind = model.KindInterface
	}
	e := model.NewTyped(kind, t.Name, t)
	e.Description = t.Description
	if t.URL != "" {
		e.Info().Add(model.InfoURL, t.URL)
	}
	if t.Source != "" {
		e.Info().Add(model.InfoSource, t.Source)
	}
	return e
}
