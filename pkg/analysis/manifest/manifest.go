package manifest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/errors"
)

// Format is a solution file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Source opens solution files.
var Source = &analysis.Source{
	Name:        "manifest",
	Aliases:     []string{"toml", "yaml", "yml"},
	Description: "declarative solution file (TOML or YAML)",
	Detect:      detect,
	Open: func(_ context.Context, path string) (analysis.Provider, error) {
		return Open(path)
	},
}

func detect(path string) bool {
	_, ok := FormatOf(path)
	return ok
}

// File is the decoded solution file.
type File struct {
	Name     string        `toml:"name" yaml:"name"`
	Projects []ProjectSpec `toml:"project" yaml:"projects"`
}

// ProjectSpec declares one project.
type ProjectSpec struct {
	Name        string     `toml:"name" yaml:"name"`
	Path        string     `toml:"path" yaml:"path,omitempty"`
	Description string     `toml:"description" yaml:"description,omitempty"`
	URL         string     `toml:"url" yaml:"url,omitempty"`
	Executable  bool       `toml:"executable" yaml:"executable,omitempty"`
	References  []string   `toml:"references" yaml:"references,omitempty"`
	Classes     []TypeSpec `toml:"class" yaml:"classes,omitempty"`
	Interfaces  []TypeSpec `toml:"interface" yaml:"interfaces,omitempty"`
}

// TypeSpec declares a class or interface.
type TypeSpec struct {
	Name        string    `toml:"name" yaml:"name"`
	Description string    `toml:"description" yaml:"description,omitempty"`
	Source      string    `toml:"source" yaml:"source,omitempty"`
	URL         string    `toml:"url" yaml:"url,omitempty"`
	Uses        []UseSpec `toml:"uses" yaml:"uses,omitempty"`
}

// UseSpec declares an outgoing reference.
type UseSpec struct {
	Target      string `toml:"target" yaml:"target"`
	Description string `toml:"description" yaml:"description,omitempty"`
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Open reads and parses the solution file at path.
func Open(path string) (*analysis.Catalog, error) {
	if err := errors.ValidateManifestFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "unsupported solution file %s (want .toml, .yaml or .yml)", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "solution file %s", path)
		}
		return nil, err
	}
	return Parse(data, format)
}

// Decode decodes a solution file without building a catalog.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode toml")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown manifest format %q", format)
	}
	return &f, nil
}

// Parse decodes data and builds the catalog it declares.
func Parse(data []byte, format Format) (*analysis.Catalog, error) {
	f, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return f.Catalog()
}

// Catalog builds the provider view of f. Project names must be unique and
// project references must name declared projects.
func (f *File) Catalog() (*analysis.Catalog, error) {
	c := analysis.NewCatalog()
	projects := make(map[string]*analysis.Project, len(f.Projects))

	for i, ps := range f.Projects {
		if strings.TrimSpace(ps.Name) == "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "project #%d has no name", i+1)
		}
		if _, dup := projects[ps.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "duplicate project %q", ps.Name)
		}
		if err := validateURL(ps.URL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "project %q", ps.Name)
		}
		p := &analysis.Project{
			Name:        ps.Name,
			Path:        ps.Path,
			Description: ps.Description,
			URL:         ps.URL,
			Executable:  ps.Executable,
		}
		projects[ps.Name] = p
		c.AddProject(p)

		for _, ts := range ps.Classes {
			if err := addType(c, p, ts, analysis.KindClass); err != nil {
				return nil, err
			}
		}
		for _, ts := range ps.Interfaces {
			if err := addType(c, p, ts, analysis.KindInterface); err != nil {
				return nil, err
			}
		}
	}

	for _, ps := range f.Projects {
		p := projects[ps.Name]
		for _, ref := range ps.References {
			dep, ok := projects[ref]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "project %q references unknown project %q", ps.Name, ref)
			}
			p.References = append(p.References, dep)
		}
		for _, ts := range slices.Concat(ps.Classes, ps.Interfaces) {
			from, _ := c.Lookup(p, ts.Name)
			for _, use := range ts.Uses {
				c.AddReference(from, analysis.Reference{
					Target:      lookup(c, projects, p, use.Target),
					TargetName:  use.Target,
					Description: use.Description,
				})
			}
		}
	}
	return c, nil
}

func addType(c *analysis.Catalog, p *analysis.Project, ts TypeSpec, kind analysis.TypeKind) error {
	if strings.TrimSpace(ts.Name) == "" {
		return errors.New(errors.ErrCodeInvalidManifest, "unnamed %s in project %q", kind, p.Name)
	}
	if _, dup := c.Lookup(p, ts.Name); dup {
		return errors.New(errors.ErrCodeInvalidManifest, "duplicate type %q in project %q", ts.Name, p.Name)
	}
	if err := validateURL(ts.URL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "type %q in project %q", ts.Name, p.Name)
	}
	c.AddType(&analysis.Type{
		Name:        ts.Name,
		Kind:        kind,
		Project:     p,
		Description: ts.Description,
		Source:      ts.Source,
		URL:         ts.URL,
	})
	return nil
}

// validateURL accepts an empty URL. Element URLs become links in rendered
// SVG, so only http and https are allowed.
func validateURL(u string) error {
	if u == "" {
		return nil
	}
	return errors.ValidateURL(u)
}

// lookup resolves a use target; nil means external.
func lookup(c *analysis.Catalog, projects map[string]*analysis.Project, from *analysis.Project, target string) *analysis.Type {
	if i := strings.LastIndex(target, "/"); i >= 0 {
		if p, ok := projects[target[:i]]; ok {
			name := target[i+1:]
			t, _ := c.Lookup(p, name)
			return t
		}
		return nil
	}
	if t, ok := c.Lookup(from, target); ok {
		return t
	}
	t, _ := c.LookupAny(target)
	return t
}

// Encode writes f in the given format.
func (f *File) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, err
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}
	return buf.Bytes(), nil
}

// FromProvider snapshots the projects and types of p into a solution file,
// so that an analysed code base can be curated by hand.
func FromProvider(name string, p analysis.Provider) *File {
	f := &File{Name: name}
	projects := p.Projects(nil)
	for _, proj := range projects {
		ps := ProjectSpec{
			Name:        proj.Name,
			Path:        proj.Path,
			Description: proj.Description,
			URL:         proj.URL,
			Executable:  proj.Executable,
		}
		for _, dep := range proj.References {
			ps.References = append(ps.References, dep.Name)
		}
		only := []*analysis.Project{proj}
		for _, t := range p.Classes(only, nil) {
			ps.Classes = append(ps.Classes, typeSpec(p, t))
		}
		for _, t := range p.Interfaces(only, nil) {
			ps.Interfaces = append(ps.Interfaces, typeSpec(p, t))
		}
		f.Projects = append(f.Projects, ps)
	}
	return f
}

func typeSpec(p analysis.Provider, t *analysis.Type) TypeSpec {
	ts := TypeSpec{
		Name:        t.Name,
		Description: t.Description,
		Source:      t.Source,
		URL:         t.URL,
	}
	for _, ref := range p.RelationshipsFrom(t) {
		target := ref.TargetName
		if ref.Target != nil {
			target = ref.Target.Project.Name + "/" + ref.Target.Name
		}
		ts.Uses = append(ts.Uses, UseSpec{Target: target, Description: ref.Description})
	}
	return ts
}
