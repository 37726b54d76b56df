package executor

import (
	"os"

	"github.com/spf13/afero"

	"github.com/arthur-debert/cellar/pkg/errors"
)

// applyChmod sets the mode on exactly the declared files. Every file is
// checked before any is changed, so a missing path leaves the prefix as
// it was.
func applyChmod(fs afero.Fs, action *ChmodAction) error {
	for _, p := range action.Paths {
		if _, err := fs.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return errors.Newf(errors.ErrFileNotFound, "%s was not installed", p).
					WithDetail(errors.DetailPath, p)
			}
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", p).
				WithDetail(errors.DetailPath, p)
		}
	}
	for _, p := range action.Paths {
		if err := fs.Chmod(p, action.Mode); err != nil {
			return errors.Wrapf(err, errors.ErrPermission, "failed to chmod %s", p).
				WithDetail(errors.DetailPath, p)
		}
	}
	return nil
}
