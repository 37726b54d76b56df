package executor

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/fetch"
	"github.com/arthur-debert/cellar/pkg/formula"
)

// ReceiptFileName is written at the top of every install prefix
const ReceiptFileName = "INSTALL_RECEIPT.json"

// Receipt records how a prefix was produced
type Receipt struct {
	Formula             string    `json:"formula"`
	Version             string    `json:"version"`
	Head                bool      `json:"head"`
	Options             []string  `json:"options"`
	RuntimeDependencies []string  `json:"runtime_dependencies"`
	Source              string    `json:"source"`
	Checksum            string    `json:"sha256,omitempty"`
	Prefix              string    `json:"prefix"`
	InstalledAt         time.Time `json:"installed_at"`
}

func newReceipt(f *formula.Formula, opts InstallOptions, plan *Plan, src *fetch.Source, at time.Time) *Receipt {
	runtimeDeps := []string{}
	for _, d := range f.RuntimeDependencies(opts.Options) {
		runtimeDeps = append(runtimeDeps, d.Name)
	}
	options := plan.Options
	if options == nil {
		options = []string{}
	}
	return &Receipt{
		Formula:             f.Name,
		Version:             plan.Version,
		Head:                plan.Head,
		Options:             options,
		RuntimeDependencies: runtimeDeps,
		Source:              plan.Source,
		Checksum:            src.Checksum,
		Prefix:              plan.Prefix,
		InstalledAt:         at.UTC(),
	}
}

func writeReceipt(fs afero.Fs, prefix string, r *Receipt) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode receipt")
	}
	if err := fs.MkdirAll(prefix, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", prefix)
	}
	path := filepath.Join(prefix, ReceiptFileName)
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	return path, nil
}

// ReadReceipt loads the receipt of an installed prefix
func ReadReceipt(fs afero.Fs, prefix string) (*Receipt, error) {
	path := filepath.Join(prefix, ReceiptFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "no receipt in %s", prefix).
			WithDetail(errors.DetailPath, path)
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "corrupt receipt %s", path)
	}
	return &r, nil
}
