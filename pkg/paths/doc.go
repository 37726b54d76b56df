// Package paths provides centralized path handling for cellar.
//
// It follows the XDG Base Directory specification: downloads and build
// scratch trees live under the cache home, the user configuration under the
// config home and installed kegs under the data home. Each location can be
// overridden with a CELLAR_*_DIR environment variable.
package paths
