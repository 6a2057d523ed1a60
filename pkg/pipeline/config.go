package pipeline

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/archviews/pkg/errors"
)

// ConfigFile is the name of the optional project configuration file.
const ConfigFile = "archviews.toml"

// LoadConfig decodes a TOML configuration file into Options. Unknown keys are
// rejected so that typos do not silently fall back to defaults. A relative
// solution path is resolved against the directory of the file.
func LoadConfig(path string) (Options, error) {
	var opts Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Options{}, errors.New(errors.ErrCodeFileNotFound, "config not found: %s", path)
		}
		return Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if opts.Solution != "" && !filepath.IsAbs(opts.Solution) {
		opts.Solution = filepath.Join(filepath.Dir(path), opts.Solution)
	}
	return opts, nil
}

// FindConfig returns the path of [ConfigFile] in dir, or "" if there is none.
func FindConfig(dir string) string {
	p := filepath.Join(dir, ConfigFile)
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p
	}
	return ""
}
