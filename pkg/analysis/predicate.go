package analysis

import (
	"fmt"
	"path"
	"strings"
)

// Predicate selects projects or types.
type Predicate[T any] func(T) bool

// Match reports whether v is selected. A nil predicate selects everything.
func (p Predicate[T]) Match(v T) bool { return p == nil || p(v) }

// AllProjects selects every project.
func AllProjects(*Project) bool { return true }

// ExecutableProjects selects projects that build a runnable program.
func ExecutableProjects(p *Project) bool { return p.Executable }

// AllTypes selects every type.
func AllTypes(*Type) bool { return true }

// NameContains selects values whose name contains substr.
func NameContains[T fmt.Stringer](substr string) Predicate[T] {
	return func(v T) bool { return strings.Contains(v.String(), substr) }
}

// NameExcludes selects values whose name does not contain substr.
func NameExcludes[T fmt.Stringer](substr string) Predicate[T] {
	return Not(NameContains[T](substr))
}

// NameMatches selects values whose name matches the shell pattern, as
// accepted by [path.Match].
func NameMatches[T fmt.Stringer](pattern string) (Predicate[T], error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	return func(v T) bool {
		ok, _ := path.Match(pattern, v.String())
		return ok
	}, nil
}

// InProjects selects types declared in one of projects.
func InProjects(projects ...*Project) Predicate[*Type] {
	set := make(map[*Project]bool, len(projects))
	for _, p := range projects {
		set[p] = true
	}
	return func(t *Type) bool { return set[t.Project] }
}

// And selects values matched by every predicate. Nil predicates are ignored.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return func(v T) bool {
		for _, p := range preds {
			if !p.Match(v) {
				return false
			}
		}
		return true
	}
}

// Or selects values matched by at least one predicate.
func Or[T any](preds ...Predicate[T]) Predicate[T] {
	return func(v T) bool {
		for _, p := range preds {
			if p != nil && p(v) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not[T any](p Predicate[T]) Predicate[T] {
	return func(v T) bool { return !p.Match(v) }
}
