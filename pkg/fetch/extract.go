package fetch

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/paths"
)

type archiveKind int

const (
	kindUnknown archiveKind = iota
	kindTar
	kindTarGz
	kindTarBz2
	kindZip
)

func kindOf(name string) archiveKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return kindTarGz
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return kindTarBz2
	case strings.HasSuffix(lower, ".tar"):
		return kindTar
	case strings.HasSuffix(lower, ".zip"):
		return kindZip
	default:
		return kindUnknown
	}
}

// entry is one archive member, normalised across tar and zip
type entry struct {
	name     string
	mode     os.FileMode
	dir      bool
	symlink  string
	hardlink string
	contents io.Reader
}

// Extract unpacks archive into dest. When every member lives under one
// top-level directory that directory is stripped, the way release tarballs
// are laid out.
func Extract(fs afero.Fs, archive, dest string) error {
	kind := kindOf(archive)
	if kind == kindUnknown {
		return errors.Newf(errors.ErrSourceExtract, "unsupported archive type: %s", filepath.Base(archive)).
			WithDetail(errors.DetailPath, archive)
	}

	var names []string
	if err := walkArchive(fs, archive, kind, func(e entry) error {
		names = append(names, e.name)
		return nil
	}); err != nil {
		return err
	}
	strip := commonRoot(names)

	if err := fs.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dest)
	}

	return walkArchive(fs, archive, kind, func(e entry) error {
		rel := strings.TrimPrefix(e.name, strip)
		if rel == "" {
			return nil
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))
		if !paths.IsWithin(dest, target) {
			return errors.Newf(errors.ErrSourceExtract, "archive member %q escapes the source tree", e.name)
		}
		if e.symlink != "" {
			resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(e.symlink))
			if filepath.IsAbs(e.symlink) || !paths.IsWithin(dest, resolved) {
				return errors.Newf(errors.ErrSourceExtract, "archive link %q points outside the source tree", e.name)
			}
		}
		if e.hardlink != "" {
			source := filepath.Join(dest, filepath.FromSlash(strings.TrimPrefix(e.hardlink, strip)))
			if !paths.IsWithin(dest, source) {
				return errors.Newf(errors.ErrSourceExtract, "archive link %q points outside the source tree", e.name)
			}
			return copyLinked(fs, source, target, e)
		}
		return writeEntry(fs, target, e)
	})
}

// copyLinked materialises a hard link as a copy of its already extracted
// target, so the tree does not depend on the filesystem supporting links
func copyLinked(fs afero.Fs, source, target string, e entry) error {
	in, err := fs.Open(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceExtract, "hard link %q targets %q, which was not extracted", e.name, e.hardlink).
			WithDetail(errors.DetailPath, source)
	}
	defer func() {
		_ = in.Close()
	}()
	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", source)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrSourceExtract, "hard link %q targets directory %q", e.name, e.hardlink)
	}
	return writeEntry(fs, target, entry{name: e.name, mode: info.Mode().Perm(), contents: in})
}

func writeEntry(fs afero.Fs, target string, e entry) error {
	switch {
	case e.dir:
		if err := fs.MkdirAll(target, dirMode(e.mode)); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target)
		}
	case e.symlink != "":
		linker, ok := fs.(afero.Linker)
		if !ok {
			return nil
		}
		if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		if err := linker.SymlinkIfPossible(e.symlink, target); err != nil {
			return errors.Wrapf(err, errors.ErrSourceExtract, "failed to link %s", target)
		}
	default:
		if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		out, err := fs.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode(e.mode))
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", target)
		}
		_, copyErr := io.Copy(out, e.contents)
		closeErr := out.Close()
		if copyErr != nil {
			return errors.Wrapf(copyErr, errors.ErrSourceExtract, "failed to extract %s", target)
		}
		if closeErr != nil {
			return errors.Wrapf(closeErr, errors.ErrFileWrite, "failed to write %s", target)
		}
		// OpenFile honours the umask; the archive's bits win
		if err := fs.Chmod(target, fileMode(e.mode)); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to chmod %s", target)
		}
	}
	return nil
}

func walkArchive(fs afero.Fs, archive string, kind archiveKind, visit func(entry) error) error {
	file, err := fs.Open(archive)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", archive)
	}
	defer func() {
		_ = file.Close()
	}()

	if kind == kindZip {
		info, err := file.Stat()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", archive)
		}
		return walkZip(file, info.Size(), visit)
	}

	var r io.Reader = file
	switch kind {
	case kindTarGz:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return errors.Wrapf(err, errors.ErrSourceExtract, "%s is not gzip data", filepath.Base(archive))
		}
		defer func() {
			_ = gz.Close()
		}()
		r = gz
	case kindTarBz2:
		r = bzip2.NewReader(file)
	}
	return walkTar(r, visit)
}

func walkTar(r io.Reader, visit func(entry) error) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrSourceExtract, "corrupt tar archive")
		}

		e := entry{name: cleanName(hdr.Name), mode: hdr.FileInfo().Mode().Perm()}
		switch hdr.Typeflag {
		case tar.TypeDir:
			e.dir = true
		case tar.TypeSymlink:
			e.symlink = hdr.Linkname
		case tar.TypeLink:
			e.hardlink = cleanName(hdr.Linkname)
		case tar.TypeReg:
			e.contents = tr
		default:
			// devices and fifos have no place in a source tree
			continue
		}
		if e.name == "" {
			continue
		}
		if err := visit(e); err != nil {
			return err
		}
	}
}

func walkZip(r io.ReaderAt, size int64, visit func(entry) error) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return errors.Wrap(err, errors.ErrSourceExtract, "corrupt zip archive")
	}
	for _, zf := range zr.File {
		e := entry{name: cleanName(zf.Name), mode: zf.Mode().Perm(), dir: zf.FileInfo().IsDir()}
		if e.name == "" {
			continue
		}
		if e.dir {
			if err := visit(e); err != nil {
				return err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return errors.Wrapf(err, errors.ErrSourceExtract, "failed to read %s", zf.Name)
		}
		e.contents = rc
		visitErr := visit(e)
		_ = rc.Close()
		if visitErr != nil {
			return visitErr
		}
	}
	return nil
}

func cleanName(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "." {
		return ""
	}
	return name
}

// commonRoot returns "dir/" when every name is dir or lies below it
func commonRoot(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var root string
	nested := false
	for _, n := range names {
		first, rest, found := strings.Cut(n, "/")
		if root == "" {
			root = first
		}
		if first != root {
			return ""
		}
		if found && rest != "" {
			nested = true
		}
	}
	if !nested {
		return ""
	}
	return root + "/"
}

func fileMode(m os.FileMode) os.FileMode {
	if m == 0 {
		return 0644
	}
	return m
}

func dirMode(m os.FileMode) os.FileMode {
	if m == 0 {
		return 0755
	}
	return m | 0700
}
