// Package analysis defines the contract between archviews and the code
// analysis providers that discover projects, types and their references.
//
// # Overview
//
// A [Provider] is an opened solution. It lists projects and, per project,
// classes and interfaces, plus the outgoing references of each type. Every
// query takes a [Predicate] so callers can narrow the result without the
// provider knowing about filters:
//
//	prov, err := analysis.Open(ctx, manifest.Source, "solution.toml")
//	if err != nil {
//	    return err // LOAD_FAILURE
//	}
//	apis := prov.Projects(analysis.And(
//	    analysis.ExecutableProjects,
//	    analysis.NameContains[*analysis.Project]("Api"),
//	))
//
// # Sources
//
// A [Source] describes how to detect and open one kind of solution. The
// concrete sources live in subpackages (manifest, golang) and are listed in
// [github.com/matzehuels/archviews/pkg/analysis/providers] so this package
// does not import them.
//
// # Populating a model
//
// [Populate] copies provider output into a [model.Model]. Projects and types
// become typed elements carrying the provider handle as payload, so the
// resolver can merge wrappers created independently for the same handle.
// Reference targets are created as fresh wrappers and are only reconciled by
// [model.Model.ResolveNodes]; references to types outside the analysed
// projects stay unresolved unless [Options.IncludeExternal] is set.
package analysis
