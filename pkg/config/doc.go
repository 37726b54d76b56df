// Package config loads cellar's configuration.
//
// Values are layered with koanf, later layers winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user config file, TOML or YAML, from the XDG config dir or --config
//  3. CELLAR_* environment variables, "__" separating nested keys
//     (CELLAR_BUILD__JOBS=4 sets build.jobs)
//  4. command-line overrides
//
// Paths the formulas used to hard-code (interpreter, prefix) are ordinary
// keys here and reach the executor through InstallOptions.
package config
