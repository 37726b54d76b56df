// Package executor runs a formula from source to installed prefix.
//
// An install walks fixed stages: fetch the source and verify its checksum,
// install dependencies, run the build steps, run the test steps when the
// with-test option is on, run the install steps, apply the post-install
// actions and finally write an install receipt into the prefix. The first
// failure stops the install; nothing is rolled back and the scratch source
// tree is kept for inspection.
//
// Plan computes the exact command sequence without touching anything and
// backs both dry runs and `cellar plan`.
package executor
