package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/logging"
	"github.com/arthur-debert/cellar/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix of environment variables read as config
const EnvPrefix = "CELLAR_"

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("not implemented")
}

// LoadOptions selects the layers Load merges
type LoadOptions struct {
	// ConfigFile is an explicit config file. When empty the XDG candidates
	// from Paths are tried and a missing file is not an error.
	ConfigFile string

	// Paths supplies the XDG config candidates. Nil skips the user layer.
	Paths paths.Paths

	// Overrides are dotted keys set from the command line
	Overrides map[string]interface{}

	// SkipEnv disables the environment layer
	SkipEnv bool
}

// Load merges defaults, the user config file, environment and overrides
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config.loader")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config
	configFile, err := resolveConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		parser, err := parserFor(configFile)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", configFile).
				WithDetail(errors.DetailPath, configFile)
		}
		logger.Debug().Str("path", configFile).Msg("Loaded user config")
	}

	// 3. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Command-line overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps CELLAR_BUILD__JOBS to build.jobs and CELLAR_PACKAGE_MANAGER
// to package_manager
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		path := paths.ExpandHome(opts.ConfigFile)
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", path).
				WithDetail(errors.DetailPath, path)
		}
		return path, nil
	}
	if opts.Paths == nil {
		return "", nil
	}
	for _, candidate := range opts.Paths.ConfigFileCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigParse, "unsupported config format %q", filepath.Ext(path)).
			WithDetail(errors.DetailPath, path)
	}
}

func postProcess(cfg *Config) error {
	if cfg.Build.Jobs <= 0 {
		cfg.Build.Jobs = runtime.NumCPU()
	}
	if cfg.Prefix != "" {
		cfg.Prefix = paths.ExpandHome(cfg.Prefix)
	}
	if cfg.Output.Styles != "" {
		cfg.Output.Styles = paths.ExpandHome(cfg.Output.Styles)
	}
	for i, dir := range cfg.FormulaDirs {
		cfg.FormulaDirs[i] = paths.ExpandHome(dir)
	}

	switch cfg.Output.Format {
	case FormatText, FormatJSON:
	default:
		return errors.Newf(errors.ErrConfigParse, "output.format must be %q or %q, got %q", FormatText, FormatJSON, cfg.Output.Format)
	}
	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Newf(errors.ErrConfigParse, "output.color must be auto, always or never, got %q", cfg.Output.Color)
	}
	if cfg.Python == "" {
		return errors.New(errors.ErrConfigParse, "python must not be empty")
	}
	return nil
}

// Defaults returns the embedded defaults without any user layer
func Defaults() (*Config, error) {
	return Load(LoadOptions{SkipEnv: true})
}
