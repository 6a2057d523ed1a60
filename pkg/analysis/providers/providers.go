// Package providers lists the supported analysis sources.
//
// This package exists to break import cycles: the individual sources
// (manifest, golang) import pkg/analysis, so pkg/analysis cannot import them
// back. Consumers that need the full list import this package.
//
// Usage:
//
//	src := providers.Find("go")
//	if src == nil {
//	    src = providers.Detect(path)
//	}
package providers

import (
	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/analysis/golang"
	"github.com/matzehuels/archviews/pkg/analysis/manifest"
)

// All is the canonical list of analysis sources, in detection order.
var All = []*analysis.Source{
	manifest.Source,
	golang.Source,
}

// Find returns the source with the given name or alias, or nil if not found.
func Find(name string) *analysis.Source {
	return analysis.Find(name, All)
}

// Detect returns the first source that recognises path, or nil.
func Detect(path string) *analysis.Source {
	return analysis.Detect(path, All)
}

// Names returns the source names.
func Names() []string {
	names := make([]string, len(All))
	for i, s := range All {
		names[i] = s.Name
	}
	return names
}
