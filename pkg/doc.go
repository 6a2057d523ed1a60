// Package pkg provides the core libraries for archviews architecture diagrams.
//
// # Overview
//
// archviews reads a code base (or a hand-written solution file), builds a
// model of its projects, types and their relationships, and renders views of
// that model as node-link diagrams. The pkg directory is organized into four
// areas:
//
//  1. Domain: [model], [workspace] and [analysis] (elements, views, providers)
//  2. Rendering: [render] and its subpackages (layout selection, Graphviz)
//  3. Orchestration: [pipeline] (analyze → view → layout → render)
//  4. Support: [cache], [errors], [observability], [graph], [export/site]
//
// # Architecture
//
// The typical data flow:
//
//	Solution (go.mod, archviews.toml, archviews.yaml)
//	         ↓
//	    [analysis] provider (projects, types, references)
//	         ↓
//	    [model] package (resolved elements and relationships)
//	         ↓
//	    [workspace] package (named views over the model)
//	         ↓
//	    [render] packages (layout selection + Graphviz)
//	         ↓
//	    SVG/PDF/PNG/DOT/JSON output, or a Jekyll site
//
// # Quick Start
//
// Render the overview of a solution:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Solution: "shop.toml",
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// Build a view around one element by hand:
//
//	a, _ := runner.Analyze(ctx, opts)
//	seed, _ := pipeline.FindElement(a.Workspace.Model(), "OrderController")
//	v := a.Workspace.CreateView("orders", seed)
//	v.AddRelated()
//	svg, _ := runner.ViewSVG(ctx, v, opts)
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test -short ./pkg/...   # Skip tests that run Graphviz
//
// [model]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/model
// [workspace]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/workspace
// [analysis]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/analysis
// [render]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/observability
// [graph]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/graph
// [export/site]: https://pkg.go.dev/github.com/matzehuels/archviews/pkg/export/site
package pkg
