package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/formula"
	"github.com/arthur-debert/cellar/pkg/logging"
	"github.com/arthur-debert/cellar/pkg/runner"
)

// PinSuffix names the file recording the first-seen digest of an archive
// whose formula declares no checksum
const PinSuffix = ".sha256"

// Source is a fetched, verified source tree
type Source struct {
	// Tree is the directory build steps run in
	Tree string `json:"tree"`
	// Archive is the cached download, empty for head checkouts
	Archive string `json:"archive,omitempty"`
	// Checksum is the SHA-256 of Archive, empty for head checkouts
	Checksum string `json:"sha256,omitempty"`
	// Head is true for VCS checkouts
	Head bool `json:"head,omitempty"`
}

// Options configures a Fetcher
type Options struct {
	Fs           afero.Fs
	Runner       runner.Runner
	DownloadsDir string
	BuildRoot    string
	Timeout      time.Duration
	// Client overrides the HTTP client, mostly for tests
	Client *http.Client
	// Git is the VCS program used for head checkouts
	Git string
}

// Fetcher downloads, verifies and unpacks formula sources
type Fetcher struct {
	fs        afero.Fs
	runner    runner.Runner
	client    *http.Client
	downloads string
	buildRoot string
	git       string
	logger    zerolog.Logger
}

// New returns a Fetcher
func New(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	git := opts.Git
	if git == "" {
		git = "git"
	}
	return &Fetcher{
		fs:        opts.Fs,
		runner:    opts.Runner,
		client:    client,
		downloads: opts.DownloadsDir,
		buildRoot: opts.BuildRoot,
		git:       git,
		logger:    logging.GetLogger("fetch"),
	}
}

// Fetch resolves f's source. With head set the VCS locator is cloned,
// otherwise the stable archive is downloaded and verified. A checksum
// mismatch is returned before anything is extracted.
func (ft *Fetcher) Fetch(ctx context.Context, f *formula.Formula, head bool) (*Source, error) {
	if head {
		if !f.HasHead() {
			return nil, errors.Newf(errors.ErrSourceFetch, "%s declares no head source", f.Name)
		}
		return ft.clone(ctx, f)
	}
	if !f.HasStableSource() {
		return nil, errors.Newf(errors.ErrSourceFetch, "%s has no stable source, use --HEAD", f.Name)
	}

	archive, checksum, err := ft.Download(ctx, f)
	if err != nil {
		return nil, err
	}

	tree, err := ft.newTree(f)
	if err != nil {
		return nil, err
	}
	if err := Extract(ft.fs, archive, tree); err != nil {
		return nil, err
	}

	ft.logger.Info().Str("formula", f.Name).Str("tree", tree).Msg("Source unpacked")
	return &Source{Tree: tree, Archive: archive, Checksum: checksum}, nil
}

// Download puts the verified archive in the cache and returns its path and
// checksum
func (ft *Fetcher) Download(ctx context.Context, f *formula.Formula) (string, string, error) {
	done := logging.LogOperationStart(ft.logger, "download "+f.Name)
	defer done()

	if err := ft.fs.MkdirAll(ft.downloads, 0755); err != nil {
		return "", "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", ft.downloads)
	}
	cached := filepath.Join(ft.downloads, CacheName(f))

	if _, err := ft.fs.Stat(cached); err == nil {
		sum, err := ft.verify(f, cached)
		if err == nil {
			ft.logger.Debug().Str("path", cached).Msg("Using cached download")
			return cached, sum, nil
		}
		if !errors.IsErrorCode(err, errors.ErrChecksumMismatch) {
			return "", "", err
		}
		ft.logger.Warn().Str("path", cached).Msg("Cached download does not match checksum, fetching again")
		if err := ft.fs.Remove(cached); err != nil {
			return "", "", errors.Wrapf(err, errors.ErrFileWrite, "failed to discard %s", cached)
		}
	}

	if err := ft.copyTo(ctx, f.URL, cached); err != nil {
		return "", "", err
	}

	sum, err := ft.verify(f, cached)
	if err != nil {
		_ = ft.fs.Remove(cached)
		return "", "", err
	}
	return cached, sum, nil
}

// verify checks file against the declared checksum. Formulas that declare
// none are held to the digest of their first download, kept next to the
// archive in PinSuffix.
func (ft *Fetcher) verify(f *formula.Formula, file string) (string, error) {
	sum, err := FileChecksum(ft.fs, file)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to checksum %s", file)
	}

	expected := f.SHA256
	pin := file + PinSuffix
	if expected == "" {
		pinned, err := ft.readPin(pin)
		if err != nil {
			return "", err
		}
		if pinned == "" {
			if err := afero.WriteFile(ft.fs, pin, []byte(sum+"\n"), 0644); err != nil {
				return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", pin)
			}
			ft.logger.Warn().Str("formula", f.Name).Str("sha256", sum).Str("pin", pin).
				Msg("No checksum declared, pinned the first download")
			return sum, nil
		}
		expected = pinned
	}

	if sum != expected {
		e := errors.Newf(errors.ErrChecksumMismatch, "checksum mismatch for %s", f.Name).
			WithDetail("expected", expected).
			WithDetail("actual", sum).
			WithDetail(errors.DetailPath, file)
		if f.SHA256 == "" {
			e = e.WithDetail("pin", pin)
		}
		return "", e
	}
	return sum, nil
}

func (ft *Fetcher) readPin(pin string) (string, error) {
	data, err := afero.ReadFile(ft.fs, pin)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", pin)
	}
	return strings.TrimSpace(string(data)), nil
}

// copyTo writes the resource at rawURL to dest through a temp file so an
// interrupted download never looks cached
func (ft *Fetcher) copyTo(ctx context.Context, rawURL, dest string) error {
	body, err := ft.open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = body.Close()
	}()

	tmp := dest + ".incomplete"
	out, err := ft.fs.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", tmp)
	}
	n, copyErr := io.Copy(out, body)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		_ = ft.fs.Remove(tmp)
		if copyErr == nil {
			copyErr = closeErr
		}
		return errors.Wrapf(copyErr, errors.ErrSourceFetch, "failed to download %s", rawURL)
	}
	if err := ft.fs.Rename(tmp, dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to move download into %s", dest)
	}

	ft.logger.Info().Str("url", rawURL).Int64("bytes", n).Msg("Downloaded source")
	return nil
}

func (ft *Fetcher) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceFetch, "invalid source url %q", rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceFetch, "invalid source url %q", rawURL)
		}
		resp, err := ft.client.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceFetch, "failed to download %s", rawURL)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, errors.Newf(errors.ErrSourceFetch, "failed to download %s: %s", rawURL, resp.Status).
				WithDetail("status", resp.StatusCode)
		}
		return resp.Body, nil
	case "file", "":
		p := u.Path
		if u.Scheme == "" {
			p = rawURL
		}
		file, err := ft.fs.Open(p)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceFetch, "failed to open %s", p)
		}
		return file, nil
	default:
		return nil, errors.Newf(errors.ErrSourceFetch, "unsupported url scheme %q", u.Scheme)
	}
}

func (ft *Fetcher) clone(ctx context.Context, f *formula.Formula) (*Source, error) {
	if err := ft.fs.MkdirAll(ft.buildRoot, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", ft.buildRoot)
	}
	parent, err := afero.TempDir(ft.fs, ft.buildRoot, f.Name+"-HEAD-")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create scratch dir for %s", f.Name)
	}
	tree := filepath.Join(parent, "src")

	args := []string{"clone", "--depth", "1"}
	if f.Head.Branch != "" {
		args = append(args, "--branch", f.Head.Branch)
	}
	args = append(args, f.Head.URL, tree)

	if err := ft.runner.Run(ctx, runner.Command{Program: ft.git, Args: args, Dir: parent}); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceFetch, "failed to clone %s", f.Head.URL)
	}
	ft.logger.Info().Str("formula", f.Name).Str("tree", tree).Msg("Head checked out")
	return &Source{Tree: tree, Head: true}, nil
}

func (ft *Fetcher) newTree(f *formula.Formula) (string, error) {
	if err := ft.fs.MkdirAll(ft.buildRoot, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", ft.buildRoot)
	}
	tree, err := afero.TempDir(ft.fs, ft.buildRoot, fmt.Sprintf("%s-%s-", f.Name, versionOrUnknown(f)))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create scratch dir for %s", f.Name)
	}
	return tree, nil
}

// Cleanup removes a scratch tree created by Fetch
func (ft *Fetcher) Cleanup(src *Source) error {
	if src == nil || src.Tree == "" {
		return nil
	}
	dir := src.Tree
	if src.Head {
		dir = filepath.Dir(src.Tree)
	}
	if err := ft.fs.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", dir)
	}
	return nil
}

// CacheName is the downloads-cache file name for f's archive
func CacheName(f *formula.Formula) string {
	base := path.Base(f.URL)
	if u, err := url.Parse(f.URL); err == nil && u.Path != "" {
		base = path.Base(u.Path)
	}
	return f.Name + "-" + versionOrUnknown(f) + "-" + base
}

func versionOrUnknown(f *formula.Formula) string {
	if f.Version == "" {
		return "unversioned"
	}
	return f.Version
}
