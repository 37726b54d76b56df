package formula

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/cellar/pkg/errors"
)

// Format is a formula file encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Parse decodes and validates a formula. Unknown keys are rejected so a
// typo in a step never silently drops a flag.
func Parse(data []byte, format Format) (*Formula, error) {
	var f Formula

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, errors.ErrFormulaParse, "invalid TOML formula")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, errors.ErrFormulaParse, "invalid YAML formula")
		}
	default:
		return nil, errors.Newf(errors.ErrFormulaParse, "unsupported formula format %q", format)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseFile reads a formula from fs, picking the format from the extension
func ParseFile(fs afero.Fs, path string) (*Formula, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, errors.Newf(errors.ErrFormulaParse, "cannot tell formula format of %s", path).
			WithDetail(errors.DetailPath, path)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFormulaNotFound, "failed to read formula %s", path).
			WithDetail(errors.DetailPath, path)
	}

	f, err := Parse(data, format)
	if err != nil {
		if ce, ok := err.(*errors.CellarError); ok {
			ce.WithDetail(errors.DetailPath, path)
		}
		return nil, err
	}
	f.Path = path
	return f, nil
}
