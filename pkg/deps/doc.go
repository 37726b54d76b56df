// Package deps installs the dependencies a formula declares.
//
// System dependencies go through a package manager (Homebrew by default,
// apt-get and dnf are also known). A dependency the manager already reports
// as installed is skipped. Python-bound dependencies are handed to pip
// through the configured interpreter, which is idempotent on its own.
package deps
