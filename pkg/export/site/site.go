package site

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/workspace"
)

// Default Jekyll layouts.
const (
	DefaultElementLayout = "element"
	DefaultViewLayout    = "view"
	DefaultIndexLayout   = "home"
)

// DiagramRenderer draws a view as SVG.
type DiagramRenderer interface {
	RenderSVG(ctx context.Context, v *workspace.View) ([]byte, error)
}

// RendererFunc adapts a function to [DiagramRenderer].
type RendererFunc func(ctx context.Context, v *workspace.View) ([]byte, error)

func (f RendererFunc) RenderSVG(ctx context.Context, v *workspace.View) ([]byte, error) {
	return f(ctx, v)
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// FrontMatter is the YAML header of a page.
type FrontMatter struct {
	Layout      string  `yaml:"layout"`
	Title       string  `yaml:"title"`
	Kind        string  `yaml:"kind,omitempty"`
	Parent      string  `yaml:"parent,omitempty"`
	Breadcrumbs []Crumb `yaml:"breadcrumbs,omitempty"`
	Permalink   string  `yaml:"permalink"`
	SourceURL   string  `yaml:"source_url,omitempty"`
	Diagram     string  `yaml:"diagram,omitempty"`
}

// Page is a Markdown page with front matter.
type Page struct {
	Path  string // Relative to the site root
	Front FrontMatter
	Body  string
}

// Bytes renders the page file.
func (p Page) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p.Front); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n\n")
	buf.WriteString(p.Body)
	return buf.Bytes(), nil
}

// Options configures an [Exporter].
type Options struct {
	Title           string
	BaseURL         string // Prefix of every generated link, e.g. "/docs"
	ElementLayout   string
	ViewLayout      string
	IndexLayout     string
	ElementDiagrams bool // Render a context diagram per element
}

// Exporter writes a workspace as a Jekyll site.
type Exporter struct {
	opts     Options
	renderer DiagramRenderer
	slugs    map[model.ID]string
}

// Result lists the files written, relative to the site root.
type Result struct {
	Pages    []string
	Diagrams []string
}

// New creates an exporter. renderer may be nil, in which case no diagrams
// are written.
func New(renderer DiagramRenderer, opts Options) *Exporter {
	if opts.ElementLayout == "" {
		opts.ElementLayout = DefaultElementLayout
	}
	if opts.ViewLayout == "" {
		opts.ViewLayout = DefaultViewLayout
	}
	if opts.IndexLayout == "" {
		opts.IndexLayout = DefaultIndexLayout
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	return &Exporter{opts: opts, renderer: renderer}
}

// Export writes the site for ws into dir. Pages are written for every model
// element and for every view of ws that exists when Export is called. With
// element diagrams enabled, Export adds one context view per element to ws.
func (x *Exporter) Export(ctx context.Context, ws *workspace.Workspace, dir string) (Result, error) {
	var res Result
	m := ws.Model()
	x.slugs = assignSlugs(m.Elements())
	views := ws.Views()

	for _, e := range m.Elements() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page := x.ElementPage(m, e)
		if x.renderer != nil && x.opts.ElementDiagrams {
			v := ContextView(ws, e)
			file := path.Join("diagrams", x.slugs[e.ID()]+".svg")
			if err := x.writeDiagram(ctx, dir, file, v); err != nil {
				return res, err
			}
			res.Diagrams = append(res.Diagrams, file)
			page.Front.Diagram = x.url("/" + file)
			page.Body += fmt.Sprintf("\n![%s](%s)\n", e.Name, page.Front.Diagram)
		}
		if err := writePage(dir, page); err != nil {
			return res, err
		}
		res.Pages = append(res.Pages, page.Path)
	}

	for _, v := range views {
		if err := errors.ValidateViewName(v.Name); err != nil {
			return res, err
		}
		page := x.ViewPage(v)
		if x.renderer != nil {
			file := path.Join("views", v.Name+".svg")
			if err := x.writeDiagram(ctx, dir, file, v); err != nil {
				return res, err
			}
			res.Diagrams = append(res.Diagrams, file)
			page.Front.Diagram = x.url("/" + file)
			page.Body = fmt.Sprintf("![%s](%s)\n\n", v.Name, page.Front.Diagram) + page.Body
		}
		if err := writePage(dir, page); err != nil {
			return res, err
		}
		res.Pages = append(res.Pages, page.Path)
	}

	index := x.IndexPage(m, views)
	if err := writePage(dir, index); err != nil {
		return res, err
	}
	res.Pages = append(res.Pages, index.Path)
	return res, nil
}

// ContextView creates the view drawn on an element page: the element, its
// direct children and every element related to either.
func ContextView(ws *workspace.Workspace, e *model.Element) *workspace.View {
	v := ws.CreateView(Slug(e.Name), e)
	v.AddChildren()
	v.AddRelated()
	return v
}

// ElementPage builds the page of e.
func (x *Exporter) ElementPage(m *model.Model, e *model.Element) Page {
	if x.slugs == nil {
		x.slugs = assignSlugs(m.Elements())
	}
	front := FrontMatter{
		Layout:    x.opts.ElementLayout,
		Title:     e.Name,
		Kind:      string(e.Kind()),
		Permalink: x.elementURL(e),
		SourceURL: e.URL(),
	}
	if p := e.Parent(); p != nil {
		front.Parent = p.Name
	}
	for _, a := range append(e.Ancestors(), e) {
		front.Breadcrumbs = append(front.Breadcrumbs, Crumb{Title: a.Name, URL: x.elementURL(a)})
	}

	var b strings.Builder
	if e.Description != "" {
		b.WriteString(e.Description)
		b.WriteString("\n")
	}
	if src := e.Info().Get(model.InfoSource); len(src) > 0 {
		fmt.Fprintf(&b, "\nDeclared in `%s`.\n", strings.Join(src, "`, `"))
	}
	if tech := e.Info().Get(model.InfoTechnology); len(tech) > 0 {
		fmt.Fprintf(&b, "\nTechnology: %s.\n", strings.Join(tech, ", "))
	}
	x.section(&b, "Contains", m.Children(e), nil)
	x.relSection(&b, "Uses", m.RelationshipsFrom(e, nil), func(r *model.Relationship) *model.Element { return r.Target })
	x.relSection(&b, "Used by", m.RelationshipsTo(e, nil), func(r *model.Relationship) *model.Element { return r.Source })

	return Page{
		Path:  path.Join("elements", x.slugs[e.ID()]+".md"),
		Front: front,
		Body:  b.String(),
	}
}

// ViewPage builds the page of v.
func (x *Exporter) ViewPage(v *workspace.View) Page {
	var b strings.Builder
	if v.Description != "" {
		b.WriteString(v.Description)
		b.WriteString("\n")
	}
	x.section(&b, "Elements", v.Elements(), func(e *model.Element) string {
		crumbs := v.Breadcrumb(e)
		if len(crumbs) < 2 {
			return ""
		}
		names := make([]string, len(crumbs)-1)
		for i, c := range crumbs[:len(crumbs)-1] {
			names[i] = c.Name
		}
		return "(in " + strings.Join(names, " / ") + ")"
	})
	return Page{
		Path: path.Join("views", v.Name+".md"),
		Front: FrontMatter{
			Layout:    x.opts.ViewLayout,
			Title:     v.Name,
			Kind:      "view",
			Permalink: x.url("/views/" + v.Name + "/"),
		},
		Body: b.String(),
	}
}

// IndexPage builds the site index: the views and the top-level elements.
func (x *Exporter) IndexPage(m *model.Model, views []*workspace.View) Page {
	title := x.opts.Title
	if title == "" {
		title = "Architecture"
	}
	var b strings.Builder
	if len(views) > 0 {
		b.WriteString("## Views\n\n")
		for _, v := range views {
			fmt.Fprintf(&b, "- [%s](%s)\n", v.Name, x.url("/views/"+v.Name+"/"))
		}
		b.WriteString("\n")
	}
	top := m.Find(func(e *model.Element) bool { return e.Parent() == nil })
	x.section(&b, "Elements", top, nil)
	return Page{
		Path:  "index.md",
		Front: FrontMatter{Layout: x.opts.IndexLayout, Title: title, Permalink: x.url("/")},
		Body:  b.String(),
	}
}

func (x *Exporter) section(b *strings.Builder, title string, elems []*model.Element, note func(*model.Element) string) {
	if len(elems) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, e := range elems {
		fmt.Fprintf(b, "- [%s](%s)", e.Name, x.elementURL(e))
		if note != nil {
			if n := note(e); n != "" {
				fmt.Fprintf(b, " %s", n)
			}
		}
		b.WriteString("\n")
	}
}

func (x *Exporter) relSection(b *strings.Builder, title string, rels []*model.Relationship, other func(*model.Relationship) *model.Element) {
	if len(rels) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, r := range rels {
		e := other(r)
		fmt.Fprintf(b, "- [%s](%s)", e.Name, x.elementURL(e))
		if r.Label != "" {
			fmt.Fprintf(b, ": %s", r.Label)
		}
		b.WriteString("\n")
	}
}

func (x *Exporter) elementURL(e *model.Element) string {
	slug, ok := x.slugs[e.ID()]
	if !ok {
		slug = Slug(e.Name)
	}
	return x.url("/elements/" + slug + "/")
}

func (x *Exporter) url(p string) string { return x.opts.BaseURL + p }

func (x *Exporter) writeDiagram(ctx context.Context, dir, file string, v *workspace.View) error {
	svg, err := x.renderer.RenderSVG(ctx, v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "render diagram %s", file)
	}
	return writeFile(dir, file, svg)
}

func writePage(dir string, p Page) error {
	data, err := p.Bytes()
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "encode front matter of %s", p.Path)
	}
	return writeFile(dir, p.Path, data)
}

func writeFile(dir, rel string, data []byte) error {
	if err := errors.ValidatePath(rel); err != nil {
		return err
	}
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "create %s", filepath.Dir(full))
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", full)
	}
	return nil
}

// Slug turns a name into a lower-case URL path segment.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "element"
	}
	return s
}

// assignSlugs gives every element a unique slug, suffixing repeats in
// registration order.
func assignSlugs(elems []*model.Element) map[model.ID]string {
	slugs := make(map[model.ID]string, len(elems))
	used := make(map[string]int)
	for _, e := range elems {
		s := Slug(e.Name)
		used[s]++
		if n := used[s]; n > 1 {
			s = fmt.Sprintf("%s-%d", s, n)
		}
		slugs[e.ID()] = s
	}
	return slugs
}
