package analysis

// Catalog is an in-memory [Provider]. Providers that load a whole solution up
// front fill a catalog and return it.
//
// The zero value is not usable; use [NewCatalog].
type Catalog struct {
	projects []*Project
	types    []*Type
	byName   map[*Project]map[string]*Type
	refs     map[*Type][]Reference
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[*Project]map[string]*Type),
		refs:   make(map[*Type][]Reference),
	}
}

// AddProject appends p. Adding the same project twice is a no-op.
func (c *Catalog) AddProject(p *Project) {
	if _, ok := c.byName[p]; ok {
		return
	}
	c.byName[p] = make(map[string]*Type)
	c.projects = append(c.projects, p)
}

// AddType appends t and registers its project if needed.
func (c *Catalog) AddType(t *Type) {
	c.AddProject(t.Project)
	if _, ok := c.byName[t.Project][t.Name]; ok {
		return
	}
	c.byName[t.Project][t.Name] = t
	c.types = append(c.types, t)
}

// AddReference records an outgoing reference of from.
func (c *Catalog) AddReference(from *Type, ref Reference) {
	if ref.TargetName == "" && ref.Target != nil {
		ref.TargetName = ref.Target.Name
	}
	c.refs[from] = append(c.refs[from], ref)
}

// Project returns the project with the given name.
func (c *Catalog) Project(name string) (*Project, bool) {
	for _, p := range c.projects {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Lookup returns the type declared in project under name.
func (c *Catalog) Lookup(project *Project, name string) (*Type, bool) {
	t, ok := c.byName[project][name]
	return t, ok
}

// LookupAny returns the first type named name in any project.
func (c *Catalog) LookupAny(name string) (*Type, bool) {
	for _, p := range c.projects {
		if t, ok := c.byName[p][name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Projects implements [Provider].
func (c *Catalog) Projects(pred Predicate[*Project]) []*Project {
	var out []*Project
	for _, p := range c.projects {
		if pred.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Classes implements [Provider].
func (c *Catalog) Classes(projects []*Project, pred Predicate[*Type]) []*Type {
	return c.typesOf(KindClass, projects, pred)
}

// Interfaces implements [Provider].
func (c *Catalog) Interfaces(projects []*Project, pred Predicate[*Type]) []*Type {
	return c.typesOf(KindInterface, projects, pred)
}

func (c *Catalog) typesOf(kind TypeKind, projects []*Project, pred Predicate[*Type]) []*Type {
	in := InProjects(projects...)
	var out []*Type
	for _, t := range c.types {
		if t.Kind == kind && in(t) && pred.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// RelationshipsFrom implements [Provider].
func (c *Catalog) RelationshipsFrom(t *Type) []Reference {
	return c.refs[t]
}
