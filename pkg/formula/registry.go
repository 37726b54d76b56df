package formula

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/logging"
)

//go:embed embedded/*.toml
var embeddedFormulas embed.FS

var extensions = []string{".toml", ".yaml", ".yml"}

// Registry finds formulas by name or path. User directories are searched
// before the formulas compiled into the binary.
type Registry struct {
	fs   afero.Fs
	dirs []string
}

// NewRegistry returns a registry reading user formulas from fs
func NewRegistry(fs afero.Fs, dirs ...string) *Registry {
	return &Registry{fs: fs, dirs: dirs}
}

// Source tells where a listed formula comes from
type Source struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"` // empty for embedded formulas
}

// Lookup resolves ref, which is either a file path or a formula name
func (r *Registry) Lookup(ref string) (*Formula, error) {
	logger := logging.GetLogger("formula.registry")

	if looksLikePath(ref) {
		logger.Debug().Str("path", ref).Msg("Loading formula from file")
		return ParseFile(r.fs, ref)
	}

	for _, dir := range r.dirs {
		for _, ext := range extensions {
			candidate := filepath.Join(dir, ref+ext)
			if _, err := r.fs.Stat(candidate); err == nil {
				logger.Debug().Str("path", candidate).Msg("Found formula in formula dir")
				return ParseFile(r.fs, candidate)
			}
		}
	}

	data, err := embeddedFormulas.ReadFile(path.Join("embedded", ref+".toml"))
	if err != nil {
		return nil, errors.Newf(errors.ErrFormulaNotFound, "no formula named %q", ref).
			WithDetail("searched", r.dirs)
	}
	logger.Debug().Str("name", ref).Msg("Using embedded formula")
	return Parse(data, FormatTOML)
}

// List returns every known formula name, user directories shadowing
// embedded formulas of the same name
func (r *Registry) List() ([]Source, error) {
	byName := make(map[string]Source)

	entries, err := fs.ReadDir(embeddedFormulas, "embedded")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to read embedded formulas")
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".toml")
		byName[name] = Source{Name: name}
	}

	for _, dir := range r.dirs {
		infos, err := afero.ReadDir(r.fs, dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read formula dir %s", dir)
		}
		for _, info := range infos {
			if info.IsDir() {
				continue
			}
			if _, ok := FormatForPath(info.Name()); !ok {
				continue
			}
			name := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
			if existing, ok := byName[name]; ok && existing.Path != "" {
				// an earlier dir already shadows this one
				continue
			}
			byName[name] = Source{Name: name, Path: filepath.Join(dir, info.Name())}
		}
	}

	sources := make([]Source, 0, len(byName))
	for _, s := range byName {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources, nil
}

func looksLikePath(ref string) bool {
	if strings.ContainsRune(ref, filepath.Separator) || strings.Contains(ref, "/") {
		return true
	}
	_, ok := FormatForPath(ref)
	return ok
}
