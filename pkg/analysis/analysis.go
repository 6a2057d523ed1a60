package analysis

import (
	"context"
	"slices"

	"github.com/matzehuels/archviews/pkg/errors"
)

// Project is a buildable unit of a solution: a .NET project, a Go package,
// a service declared in a manifest.
type Project struct {
	Name        string
	Path        string
	Description string
	URL         string
	Executable  bool       // Produces a runnable program
	References  []*Project // Projects this one depends on
}

func (p *Project) String() string { return p.Name }

// TypeKind distinguishes classes from interfaces.
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindInterface TypeKind = "interface"
)

// Type is a class or interface declared in a project.
type Type struct {
	Name        string
	Kind        TypeKind
	Project     *Project
	Description string
	Source      string // file:line of the declaration
	URL         string
}

func (t *Type) String() string { return t.Name }

// Reference is an outgoing dependency of a type.
type Reference struct {
	// Target is nil when the referenced type is declared outside the
	// analysed projects.
	Target      *Type
	TargetName  string
	Description string
}

// Resolved reports whether the reference points at an analysed type.
func (r Reference) Resolved() bool { return r.Target != nil }

// Provider is an opened solution.
type Provider interface {
	// Projects returns the projects matching pred in declaration order.
	Projects(pred Predicate[*Project]) []*Project
	// Classes returns the classes of projects matching pred.
	Classes(projects []*Project, pred Predicate[*Type]) []*Type
	// Interfaces returns the interfaces of projects matching pred.
	Interfaces(projects []*Project, pred Predicate[*Type]) []*Type
	// RelationshipsFrom returns the outgoing references of t.
	RelationshipsFrom(t *Type) []Reference
}

// Source describes one kind of solution that archviews can analyse.
type Source struct {
	Name        string
	Aliases     []string
	Description string

	// Detect reports whether path looks like a solution of this kind.
	Detect func(path string) bool
	// Open loads the solution. It blocks until the whole solution is
	// available.
	Open func(ctx context.Context, path string) (Provider, error)
}

// Matches reports whether name is the source name or one of its aliases.
func (s *Source) Matches(name string) bool {
	return s.Name == name || slices.Contains(s.Aliases, name)
}

// Open opens path with src. Any failure is reported as a LOAD_FAILURE error;
// no partially loaded provider is ever returned.
func Open(ctx context.Context, src *Source, path string) (Provider, error) {
	if src == nil || src.Open == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no analysis source for %s", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "open %s", path)
	}
	p, err := src.Open(ctx, path)
	if err != nil {
		if errors.Is(err, errors.ErrCodeLoadFailure) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "open %s solution %s", src.Name, path)
	}
	return p, nil
}

// Find returns the source matching name, or nil if not found.
func Find(name string, sources []*Source) *Source {
	for _, s := range sources {
		if s.Matches(name) {
			return s
		}
	}
	return nil
}

// Detect returns the first source whose Detect accepts path, or nil.
func Detect(path string, sources []*Source) *Source {
	for _, s := range sources {
		if s.Detect != nil && s.Detect(path) {
			return s
		}
	}
	return nil
}
