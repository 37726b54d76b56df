package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/cellar/pkg/errors"
)

// Environment variable names
const (
	// EnvCellarDataDir overrides the XDG data directory for cellar
	EnvCellarDataDir = "CELLAR_DATA_DIR"

	// EnvCellarConfigDir overrides the XDG config directory for cellar
	EnvCellarConfigDir = "CELLAR_CONFIG_DIR"

	// EnvCellarCacheDir overrides the XDG cache directory for cellar
	EnvCellarCacheDir = "CELLAR_CACHE_DIR"

	// EnvCellarStateDir overrides the XDG state directory for cellar
	EnvCellarStateDir = "CELLAR_STATE_DIR"
)

// Fixed layout below the XDG roots
const (
	// AppDirName is the directory name for cellar-specific files
	AppDirName = "cellar"

	// DownloadsDir holds fetched source archives
	DownloadsDir = "downloads"

	// BuildDir holds per-install scratch source trees
	BuildDir = "build"

	// KegsDir holds installed formulas, one <name>/<version> keg each
	KegsDir = "Cellar"

	// ConfigFileName is the base name of the user config (toml or yaml)
	ConfigFileName = "config"

	// LogFileName is the log written below the state directory
	LogFileName = "cellar.log"
)

// Paths resolves every location cellar reads or writes
type Paths interface {
	ConfigDir() string
	CacheDir() string
	DataDir() string
	StateDir() string
	LogFile() string
	DownloadsDir() string
	BuildRoot() string
	KegsRoot() string
	KegPath(name, version string) string
	ConfigFileCandidates() []string
}

type paths struct {
	configDir string
	cacheDir  string
	dataDir   string
	stateDir  string
}

// New resolves the XDG locations, honouring the CELLAR_*_DIR overrides
func New() (Paths, error) {
	p := &paths{
		configDir: dirFromEnv(EnvCellarConfigDir, xdg.ConfigHome),
		cacheDir:  dirFromEnv(EnvCellarCacheDir, xdg.CacheHome),
		dataDir:   dirFromEnv(EnvCellarDataDir, xdg.DataHome),
		stateDir:  dirFromEnv(EnvCellarStateDir, xdg.StateHome),
	}

	for _, dir := range []*string{&p.configDir, &p.cacheDir, &p.dataDir, &p.stateDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", *dir)
		}
		*dir = abs
	}

	return p, nil
}

// NewWithRoot places every location under root. Used by tests and by
// self-contained installs where nothing should leak into the user's home.
func NewWithRoot(root string) Paths {
	return &paths{
		configDir: filepath.Join(root, "config"),
		cacheDir:  filepath.Join(root, "cache"),
		dataDir:   filepath.Join(root, "data"),
		stateDir:  filepath.Join(root, "state"),
	}
}

func dirFromEnv(envVar, xdgBase string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdgBase, AppDirName)
}

func (p *paths) ConfigDir() string    { return p.configDir }
func (p *paths) CacheDir() string     { return p.cacheDir }
func (p *paths) DataDir() string      { return p.dataDir }
func (p *paths) StateDir() string     { return p.stateDir }
func (p *paths) LogFile() string      { return filepath.Join(p.stateDir, LogFileName) }
func (p *paths) DownloadsDir() string { return filepath.Join(p.cacheDir, DownloadsDir) }
func (p *paths) BuildRoot() string    { return filepath.Join(p.cacheDir, BuildDir) }
func (p *paths) KegsRoot() string     { return filepath.Join(p.dataDir, KegsDir) }

// KegPath returns the default install prefix for one formula version
func (p *paths) KegPath(name, version string) string {
	if version == "" {
		version = "HEAD"
	}
	return filepath.Join(p.KegsRoot(), name, version)
}

// ConfigFileCandidates lists user config files in lookup order
func (p *paths) ConfigFileCandidates() []string {
	return []string{
		filepath.Join(p.configDir, ConfigFileName+".toml"),
		filepath.Join(p.configDir, ConfigFileName+".yaml"),
		filepath.Join(p.configDir, ConfigFileName+".yml"),
	}
}

// ExpandHome expands a leading ~ and environment variables in path
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path)
}

// IsWithin reports whether target is base or lies below it, after cleaning
func IsWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
