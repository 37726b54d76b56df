// Package fetch resolves a formula's source into a scratch source tree.
//
// Stable sources are downloaded once into the downloads cache, verified
// against the declared SHA-256 and extracted with their single top-level
// directory stripped. A cached archive that no longer matches is discarded
// and downloaded again, once. Head sources are shallow git clones made
// through the command runner.
package fetch
