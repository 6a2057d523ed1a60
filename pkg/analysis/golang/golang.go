package golang

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/errors"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// Reference descriptions.
const (
	RefEmbeds     = "embeds"
	RefField      = "field"
	RefParameter  = "parameter"
	RefReturns    = "returns"
	RefImplements = "implements"
)

// Source opens Go modules. The path is the module directory or its go.mod.
var Source = &analysis.Source{
	Name:        "go",
	Aliases:     []string{"golang", "gomod"},
	Description: "Go module analysed with go/packages",
	Detect:      detect,
	Open: func(ctx context.Context, path string) (analysis.Provider, error) {
		return Open(ctx, Config{Dir: moduleDir(path)})
	},
}

// Config controls loading.
type Config struct {
	Dir      string   // Module directory
	Patterns []string // Package patterns, "./..." when empty
	Tests    bool     // Include test packages

	IncludeUnexported bool
	IncludeStdlib     bool // Keep references to standard library types

	// URLBase, when set, links projects to URLBase/<import path> and types
	// to the matching anchor, e.g. "https://pkg.go.dev".
	URLBase string
}

func detect(p string) bool {
	if filepath.Base(p) == "go.mod" {
		return true
	}
	info, err := os.Stat(filepath.Join(p, "go.mod"))
	return err == nil && !info.IsDir()
}

func moduleDir(p string) string {
	if filepath.Base(p) == "go.mod" {
		return filepath.Dir(p)
	}
	return p
}

// Open loads the packages matched by cfg and returns them as a catalog.
func Open(ctx context.Context, cfg Config) (*analysis.Catalog, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	for _, p := range patterns {
		if err := errors.ValidateGoPattern(p); err != nil {
			return nil, err
		}
	}

	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Dir:     cfg.Dir,
		Mode:    loadMode,
		Tests:   cfg.Tests,
	}, patterns...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "load %s", strings.Join(patterns, " "))
	}
	if len(pkgs) == 0 {
		return nil, errors.New(errors.ErrCodeLoadFailure, "no packages match %s in %s", strings.Join(patterns, " "), cfg.Dir)
	}
	var loadErrs []string
	for _, p := range pkgs {
		for _, e := range p.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	}
	if len(loadErrs) > 0 {
		return nil, errors.New(errors.ErrCodeLoadFailure, "%d package errors, first: %s", len(loadErrs), loadErrs[0])
	}

	slices.SortFunc(pkgs, func(a, b *packages.Package) int { return strings.Compare(a.ID, b.ID) })
	l := &loader{
		cfg:      cfg,
		catalog:  analysis.NewCatalog(),
		projects: make(map[string]*analysis.Project),
		types:    make(map[*types.TypeName]*analysis.Type),
	}
	l.load(pkgs)
	return l.catalog, nil
}

type loader struct {
	cfg      Config
	catalog  *analysis.Catalog
	projects map[string]*analysis.Project // by package path
	types    map[*types.TypeName]*analysis.Type
	objects  []*types.TypeName // declaration order
}

func (l *loader) load(pkgs []*packages.Package) {
	for _, pkg := range pkgs {
		if _, seen := l.projects[pkg.PkgPath]; seen {
			continue
		}
		p := &analysis.Project{
			Name:        projectName(pkg),
			Path:        l.relative(pkg, packageDir(pkg)),
			Description: packageDoc(pkg),
			Executable:  pkg.Name == "main",
			URL:         l.url(pkg.PkgPath, ""),
		}
		l.projects[pkg.PkgPath] = p
		l.catalog.AddProject(p)
		l.declare(pkg, p)
	}

	for _, pkg := range pkgs {
		p := l.projects[pkg.PkgPath]
		for _, imp := range sortedImports(pkg) {
			if dep, ok := l.projects[imp]; ok && dep != p && !slices.Contains(p.References, dep) {
				p.References = append(p.References, dep)
			}
		}
	}

	for _, obj := range l.objects {
		l.reference(obj)
	}
}

func (l *loader) declare(pkg *packages.Package, p *analysis.Project) {
	if pkg.Types == nil {
		return
	}
	docs := declDocs(pkg)
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || obj.IsAlias() || (!obj.Exported() && !l.cfg.IncludeUnexported) {
			continue
		}
		var kind analysis.TypeKind
		switch obj.Type().Underlying().(type) {
		case *types.Struct:
			kind = analysis.KindClass
		case *types.Interface:
			kind = analysis.KindInterface
		default:
			continue
		}
		t := &analysis.Type{
			Name:        pkg.Name + "." + obj.Name(),
			Kind:        kind,
			Project:     p,
			Description: docs[obj.Pos()],
			Source:      l.position(pkg, obj.Pos()),
			URL:         l.url(pkg.PkgPath, obj.Name()),
		}
		l.types[obj] = t
		l.objects = append(l.objects, obj)
		l.catalog.AddType(t)
	}
}

func (l *loader) reference(obj *types.TypeName) {
	from := l.types[obj]
	type key struct {
		target      string
		description string
	}
	seen := make(map[key]bool)
	add := func(named *types.Named, description string) {
		target := named.Obj()
		if target == obj || target.Pkg() == nil {
			return
		}
		ref := analysis.Reference{Target: l.types[target], Description: description}
		if ref.Target == nil {
			if !l.cfg.IncludeStdlib && isStdlib(target.Pkg().Path()) {
				return
			}
			ref.TargetName = target.Pkg().Name() + "." + target.Name()
		}
		k := key{ref.TargetName, description}
		if ref.Target != nil {
			k.target = ref.Target.Name
		}
		if seen[k] {
			return
		}
		seen[k] = true
		l.catalog.AddReference(from, ref)
	}

	switch u := obj.Type().Underlying().(type) {
	case *types.Struct:
		for i := range u.NumFields() {
			f := u.Field(i)
			desc := RefField
			if f.Embedded() {
				desc = RefEmbeds
			}
			for _, n := range namedIn(f.Type()) {
				add(n, desc)
			}
		}
		l.methodRefs(obj, add)
		l.implementsRefs(obj, add)
	case *types.Interface:
		for i := range u.NumEmbeddeds() {
			for _, n := range namedIn(u.EmbeddedType(i)) {
				add(n, RefEmbeds)
			}
		}
		for i := range u.NumExplicitMethods() {
			signatureRefs(u.ExplicitMethod(i).Type().(*types.Signature), add)
		}
	}
}

func (l *loader) methodRefs(obj *types.TypeName, add func(*types.Named, string)) {
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return
	}
	for i := range named.NumMethods() {
		m := named.Method(i)
		if !m.Exported() && !l.cfg.IncludeUnexported {
			continue
		}
		signatureRefs(m.Type().(*types.Signature), add)
	}
}

func (l *loader) implementsRefs(obj *types.TypeName, add func(*types.Named, string)) {
	t := obj.Type()
	if generic(t) {
		return
	}
	for _, other := range l.objects {
		iface, ok := other.Type().Underlying().(*types.Interface)
		if !ok || iface.NumMethods() == 0 || generic(other.Type()) {
			continue
		}
		if types.Implements(t, iface) || types.Implements(types.NewPointer(t), iface) {
			add(other.Type().(*types.Named), RefImplements)
		}
	}
}

func generic(t types.Type) bool {
	n, ok := t.(*types.Named)
	return ok && n.TypeParams().Len() > 0
}

func signatureRefs(sig *types.Signature, add func(*types.Named, string)) {
	for v := range sig.Params().Variables() {
		for _, n := range namedIn(v.Type()) {
			add(n, RefParameter)
		}
	}
	for v := range sig.Results().Variables() {
		for _, n := range namedIn(v.Type()) {
			add(n, RefReturns)
		}
	}
}

// namedIn returns the named types that t is built from, looking through
// pointers, containers, signatures and type arguments.
func namedIn(t types.Type) []*types.Named {
	var out []*types.Named
	seen := make(map[types.Type]bool)
	var walk func(types.Type)
	walk = func(t types.Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		switch t := t.(type) {
		case *types.Named:
			out = append(out, t)
			if args := t.TypeArgs(); args != nil {
				for a := range args.Types() {
					walk(a)
				}
			}
		case *types.Alias:
			walk(types.Unalias(t))
		case *types.Pointer:
			walk(t.Elem())
		case *types.Slice:
			walk(t.Elem())
		case *types.Array:
			walk(t.Elem())
		case *types.Chan:
			walk(t.Elem())
		case *types.Map:
			walk(t.Key())
			walk(t.Elem())
		case *types.Signature:
			for v := range t.Params().Variables() {
				walk(v.Type())
			}
			for v := range t.Results().Variables() {
				walk(v.Type())
			}
		}
	}
	walk(t)
	return out
}

func isStdlib(pkgPath string) bool {
	first, _, _ := strings.Cut(pkgPath, "/")
	return !strings.Contains(first, ".")
}

func projectName(pkg *packages.Package) string {
	if pkg.Module != nil {
		if pkg.PkgPath == pkg.Module.Path {
			return path.Base(pkg.Module.Path)
		}
		if rest, ok := strings.CutPrefix(pkg.PkgPath, pkg.Module.Path+"/"); ok {
			return rest
		}
	}
	return pkg.PkgPath
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) > 0 {
		return filepath.Dir(pkg.GoFiles[0])
	}
	return ""
}

func (l *loader) relative(pkg *packages.Package, p string) string {
	if p == "" {
		return ""
	}
	root := l.cfg.Dir
	if pkg.Module != nil && pkg.Module.Dir != "" {
		root = pkg.Module.Dir
	}
	if root == "" {
		return p
	}
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}

func (l *loader) position(pkg *packages.Package, pos token.Pos) string {
	if pkg.Fset == nil || !pos.IsValid() {
		return ""
	}
	p := pkg.Fset.Position(pos)
	return fmt.Sprintf("%s:%d", l.relative(pkg, p.Filename), p.Line)
}

func (l *loader) url(pkgPath, anchor string) string {
	if l.cfg.URLBase == "" {
		return ""
	}
	u := strings.TrimSuffix(l.cfg.URLBase, "/") + "/" + pkgPath
	if anchor != "" {
		u += "#" + anchor
	}
	return u
}

func sortedImports(pkg *packages.Package) []string {
	imports := make([]string, 0, len(pkg.Imports))
	for p := range pkg.Imports {
		imports = append(imports, p)
	}
	slices.Sort(imports)
	return imports
}

// declDocs maps the position of each type name to its doc comment.
func declDocs(pkg *packages.Package) map[token.Pos]string {
	docs := make(map[token.Pos]string)
	for _, f := range pkg.Syntax {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				if doc != nil {
					docs[ts.Name.Pos()] = strings.TrimSpace(doc.Text())
				}
			}
		}
	}
	return docs
}

func packageDoc(pkg *packages.Package) string {
	for _, f := range pkg.Syntax {
		if f.Doc != nil {
			return Synopsis(f.Doc.Text())
		}
	}
	return ""
}

// Synopsis returns the first sentence of a doc comment with line breaks
// folded into spaces.
func Synopsis(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i+1]
	}
	return text
}
