package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/analysis/providers"
	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/graph"
	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/observability"
	"github.com/matzehuels/archviews/pkg/workspace"
)

// Analysis is the outcome of the analyze stage.
type Analysis struct {
	// Workspace owns the resolved model.
	Workspace *workspace.Workspace

	// Source is the provider that loaded the solution.
	Source *analysis.Source

	// Populated lists the elements created by scraping. It is empty when the
	// model came from the cache.
	Populated analysis.Result

	// Resolution reports what reference resolution changed. It is zero when
	// the model came from the cache.
	Resolution model.Resolution

	// Warnings are the resolution warnings in serialized form. They are
	// stored with a cached model and restored on a hit.
	Warnings []graph.Warning

	// Hash is the content hash of the serialized model.
	Hash string
}

// SelectSource returns the provider named by opts.Provider or, when it is
// empty, the first provider that recognises the solution.
func SelectSource(opts Options) (*analysis.Source, error) {
	if opts.Provider != "" {
		src := providers.Find(opts.Provider)
		if src == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown provider: %s (available: %s)", opts.Provider, strings.Join(providers.Names(), ", "))
		}
		return src, nil
	}
	src := providers.Detect(opts.Solution)
	if src == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot detect a provider for %s; use --provider", opts.Solution)
	}
	return src, nil
}

// AnalyzeWithCacheInfo loads the solution into a fresh workspace, resolves
// references and reports whether the model came from the cache.
//
// Strict runs bypass the cache so that resolution warnings are always
// recomputed; any unresolved reference then fails the run with an
// [errors.UnresolvedError].
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, opts Options) (*Analysis, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, false, err
	}

	src, err := SelectSource(opts)
	if err != nil {
		return nil, false, err
	}
	fingerprint, err := Fingerprint(opts.Solution)
	if err != nil {
		return nil, false, err
	}
	location, _ := filepath.Abs(opts.Solution)
	cacheKey := r.Keyer.ModelKey(src.Name, location, opts.ModelKeyOpts(fingerprint))

	// Try cache first (unless refresh requested)
	if !opts.Refresh && !opts.Strict {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			g, err := graph.Unmarshal(data)
			var m *model.Model
			if err == nil {
				m, err = graph.ToModel(g)
			}
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "model")
				return &Analysis{
					Workspace: workspace.FromModel(m),
					Source:    src,
					Warnings:  g.Warnings,
					Hash:      cache.Hash(data),
				}, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached model", "key", cacheKey, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "model")
	}

	a, err := r.analyze(ctx, src, opts)
	if err != nil {
		return nil, false, err
	}

	g := graph.FromModel(a.Workspace.Model())
	g.Warnings = a.Warnings
	data, err := graph.Marshal(g)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize model")
	}
	a.Hash = cache.Hash(data)
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLModel); err == nil {
		observability.Cache().OnCacheSet(ctx, "model", len(data))
	} else {
		opts.Logger.Warn("cache write failed", "stage", "analyze", "error", err)
	}
	return a, false, nil
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Analysis, error) {
	a, _, err := r.AnalyzeWithCacheInfo(ctx, opts)
	return a, err
}

func (r *Runner) analyze(ctx context.Context, src *analysis.Source, opts Options) (a *Analysis, err error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnAnalyzeStart(ctx, src.Name, opts.Solution)
	elements := 0
	defer func() {
		hooks.OnAnalyzeComplete(ctx, src.Name, opts.Solution, elements, time.Since(start), err)
	}()

	opts.Logger.Debug("opening solution", "provider", src.Name, "path", opts.Solution)
	p, err := analysis.Open(ctx, src, opts.Solution)
	if err != nil {
		return nil, err
	}
	popOpts, err := opts.PopulateOptions()
	if err != nil {
		return nil, err
	}

	ws := workspace.New()
	m := ws.Model()
	populated := analysis.Populate(m, p, popOpts)
	res := m.ResolveNodes()
	elements = m.Len()

	warnings := graph.WarningsFrom(res.Warnings)
	unresolved := Unresolved(warnings)
	hooks.OnResolve(ctx, res.Merged, res.DroppedRelationships, len(res.Warnings))
	for _, w := range res.Warnings {
		opts.Logger.Debug("resolution warning", "kind", w.Kind, "reference", w.Reference, "detail", w.String())
	}
	if len(unresolved) > 0 {
		opts.Logger.Warn("dropped unresolved references", "count", len(unresolved), "first", unresolved[0])
		if opts.Strict {
			return nil, &errors.UnresolvedError{Warnings: unresolved}
		}
	}
	opts.Logger.Debug("resolved model",
		"elements", m.Len(),
		"relationships", len(m.Relationships()),
		"merged", res.Merged,
		"dropped", res.DroppedRelationships)

	return &Analysis{
		Workspace:  ws,
		Source:     src,
		Populated:  populated,
		Resolution: res,
		Warnings:   warnings,
	}, nil
}

// Unresolved returns the descriptions of the warnings that report an
// unmatched reference. Merge-induced self loops are not included.
func Unresolved(warnings []graph.Warning) []string {
	var out []string
	for _, w := range warnings {
		switch model.WarningKind(w.Kind) {
		case model.WarnUnresolvedSource, model.WarnUnresolvedTarget, model.WarnUnresolvedParent:
			out = append(out, w.Message)
		}
	}
	return out
}

// Fingerprint hashes the solution at path so that a changed solution never
// hits a stale cached model. Files are hashed by content. Directories are
// hashed by the name, size and modification time of every regular file
// below them, skipping hidden directories.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeFileNotFound, "solution not found: %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeLoadFailure, err, "stat %s", path)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeLoadFailure, err, "read %s", path)
		}
		return cache.Hash(data), nil
	}

	var buf bytes.Buffer
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(path, p)
		fmt.Fprintf(&buf, "%s\x00%d\x00%d\n", filepath.ToSlash(rel), fi.Size(), fi.ModTime().UnixNano())
		return nil
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeLoadFailure, err, "walk %s", path)
	}
	return cache.Hash(buf.Bytes()), nil
}
