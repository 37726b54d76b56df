// Package formula defines cellar's build recipes and reads them from TOML or
// YAML files.
//
// # Overview
//
// A formula names a source artifact (archive URL plus SHA-256, or a head VCS
// locator), the dependencies it needs and four ordered step lists:
//
//   - build: configure and compile inside the fetched source tree
//   - test: run only when the with-test option is enabled
//   - install: copy the results into the prefix
//   - post_install: chmod declared prefix files or run extra commands
//
// # Example
//
//	name = "hello"
//	desc = "Say hello"
//	homepage = "https://example.org/hello"
//	version = "1.0"
//	url = "https://example.org/hello-1.0.tar.gz"
//	sha256 = "<64 hex chars>"
//
//	[[depends_on]]
//	name = "cmake"
//	phase = "build"
//
//	[[depends_on]]
//	name = "numpy"
//	binding = "python"
//
//	[[build]]
//	program = "cmake"
//	args = ["..", "-DCMAKE_INSTALL_PREFIX={{prefix}}"]
//	dir = "build"
//	without = { "with-test" = ["-DBuild_Tests=OFF"] }
//
//	[[test]]
//	program = "make"
//	args = ["test"]
//	dir = "build"
//
//	[[install]]
//	program = "make"
//	args = ["install"]
//	dir = "build"
//
//	[[post_install]]
//	chmod = "0555"
//	paths = ["bin/hello"]
//
// # Placeholders
//
// Step arguments, env values and dirs may use {{prefix}}, {{python}},
// {{jobs}}, {{source}}, {{version}}, {{name}} and {{kegs}}. A dependency with
// binding = "cellar" adds {{<dep>_prefix}}, the keg of the declared version
// ({{triqs_prefix}} for triqs). They are expanded when a plan is built; an
// unknown placeholder is an error.
//
// # Options
//
// with-test is declared implicitly when a formula has test steps, and
// with-<dep> for every optional dependency. Steps gated with if_option or
// unless_option, and args listed under with/without, follow those options.
package formula
