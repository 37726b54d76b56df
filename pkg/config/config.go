package config

import (
	"time"
)

// Config is the fully merged cellar configuration
type Config struct {
	Prefix         string       `koanf:"prefix"`
	Python         string       `koanf:"python"`
	PackageManager string       `koanf:"package_manager"`
	PipArgs        []string     `koanf:"pip_args"`
	FormulaDirs    []string     `koanf:"formula_dirs"`
	Build          BuildConfig  `koanf:"build"`
	Fetch          FetchConfig  `koanf:"fetch"`
	Output         OutputConfig `koanf:"output"`
}

// BuildConfig controls the build stage
type BuildConfig struct {
	Jobs          int    `koanf:"jobs"`
	Keep          bool   `koanf:"keep"`
	ConfigureTool string `koanf:"configure_tool"`
}

// FetchConfig controls source downloads
type FetchConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// OutputConfig controls terminal rendering
type OutputConfig struct {
	Color  string `koanf:"color"`
	Format string `koanf:"format"`
	// Styles is an optional YAML file replacing the built-in styles
	Styles string `koanf:"styles"`
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
