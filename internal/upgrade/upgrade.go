// Package upgrade checks GitHub releases for a newer vbid and replaces the running binary.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"
)

const (
	repoOwner  = "virtualboard"
	repoName   = "vb-ident"
	binaryName = "vbid"
)

var (
	// ErrAssetNotFound indicates the release has no binary for this platform.
	ErrAssetNotFound = errors.New("release asset not found")
	// ErrReplaceFailed marks failures while swapping the executable on disk.
	ErrReplaceFailed = errors.New("failed to replace binary")
)

// Result describes the outcome of a check or upgrade.
type Result struct {
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	Available      bool   `json:"available"`
	Upgraded       bool   `json:"upgraded"`
	Message        string `json:"message"`
}

// Option customises an Upgrader.
type Option func(*Upgrader)

// WithClient replaces the GitHub API client.
func WithClient(c *github.Client) Option {
	return func(u *Upgrader) { u.client = c }
}

// WithHTTPClient replaces the client used for asset downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Upgrader) { u.http = c }
}

// WithExecutable overrides how the running binary is located.
func WithExecutable(fn func() (string, error)) Option {
	return func(u *Upgrader) { u.executable = fn }
}

// Upgrader handles the upgrade process for the vbid binary.
type Upgrader struct {
	client     *github.Client
	http       *http.Client
	executable func() (string, error)
	log        *logrus.Entry
}

// NewUpgrader creates a new upgrader instance.
func NewUpgrader(logger *logrus.Logger, opts ...Option) *Upgrader {
	u := &Upgrader{
		client:     github.NewClient(nil),
		http:       http.DefaultClient,
		executable: os.Executable,
		log:        logger.WithField("component", "upgrade"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CheckForUpdate fetches the latest release and reports whether it is newer than current.
// A current version that is not valid semver (e.g. "dev") is always considered outdated.
func (u *Upgrader) CheckForUpdate(ctx context.Context, current string) (*github.RepositoryRelease, bool, error) {
	release, _, err := u.client.Repositories.GetLatestRelease(ctx, repoOwner, repoName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get latest release: %w", err)
	}

	latest := canonical(release.GetTagName())
	cur := canonical(current)
	u.log.WithFields(logrus.Fields{"current": cur, "latest": latest}).Info("fetched latest release")

	if !semver.IsValid(latest) {
		return nil, false, fmt.Errorf("latest release tag %q is not a semantic version", release.GetTagName())
	}
	if !semver.IsValid(cur) {
		return release, true, nil
	}
	return release, semver.Compare(latest, cur) > 0, nil
}

// Check reports on the latest release without changing anything.
func (u *Upgrader) Check(ctx context.Context, current string) (*Result, error) {
	release, available, err := u.CheckForUpdate(ctx, current)
	if err != nil {
		return nil, err
	}
	res := &Result{
		CurrentVersion: current,
		LatestVersion:  release.GetTagName(),
		Available:      available,
	}
	if available {
		res.Message = fmt.Sprintf("Version %s is available (current %s)", res.LatestVersion, current)
	} else {
		res.Message = "You are already running the latest version"
	}
	return res, nil
}

// Upgrade downloads and installs the latest release when it is newer than current.
func (u *Upgrader) Upgrade(ctx context.Context, current string) (*Result, error) {
	release, available, err := u.CheckForUpdate(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	res := &Result{
		CurrentVersion: current,
		LatestVersion:  release.GetTagName(),
		Available:      available,
	}
	if !available {
		res.Message = "You are already running the latest version"
		return res, nil
	}

	path, err := u.DownloadAsset(ctx, release)
	if err != nil {
		return nil, fmt.Errorf("failed to download new binary: %w", err)
	}
	if err := u.ReplaceBinary(path); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	res.Upgraded = true
	res.Message = fmt.Sprintf("Successfully upgraded to version %s", res.LatestVersion)
	u.log.WithField("version", res.LatestVersion).Info("upgrade complete")
	return res, nil
}

// AssetName returns the release asset name for the current platform.
func AssetName() string {
	return assetName(runtime.GOOS, runtime.GOARCH)
}

func assetName(goos, goarch string) string {
	switch goarch {
	case "amd64", "386", "arm64", "arm":
	default:
		goarch = "amd64"
	}
	switch goos {
	case "darwin":
		return fmt.Sprintf("%s-macos-%s", binaryName, goarch)
	case "linux":
		return fmt.Sprintf("%s-linux-%s", binaryName, goarch)
	case "windows":
		return fmt.Sprintf("%s-windows-%s.exe", binaryName, goarch)
	default:
		return fmt.Sprintf("%s_%s_%s", binaryName, goos, goarch)
	}
}

// DownloadAsset saves this platform's release asset to an executable temp file and returns its path.
func (u *Upgrader) DownloadAsset(ctx context.Context, release *github.RepositoryRelease) (string, error) {
	want := AssetName()
	var asset *github.ReleaseAsset
	for _, a := range release.Assets {
		if a.GetName() == want {
			asset = a
			break
		}
	}
	if asset == nil {
		return "", fmt.Errorf("%w: %s in release %s", ErrAssetNotFound, want, release.GetTagName())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.GetBrowserDownloadURL(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download binary: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download binary: HTTP %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", binaryName+"-upgrade-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write binary to temporary file: %w", err)
	}
	// #nosec G302 -- executable binary requires 0755 permissions
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to make binary executable: %w", err)
	}

	u.log.WithField("path", tmp.Name()).Info("downloaded release asset")
	return tmp.Name(), nil
}

// ReplaceBinary stages newPath next to the running executable and renames it into place.
// Renaming avoids writing to the running file, which Linux refuses with ETXTBSY.
func (u *Upgrader) ReplaceBinary(newPath string) error {
	currentPath, err := u.executable()
	if err != nil {
		return fmt.Errorf("%w: failed to get current executable path: %w", ErrReplaceFailed, err)
	}
	dir := filepath.Dir(currentPath)
	name := filepath.Base(currentPath)

	backupPath := filepath.Join(dir, name+".backup")
	if err := copyFile(currentPath, backupPath); err != nil {
		return fmt.Errorf("%w: failed to create backup: %w", ErrReplaceFailed, err)
	}
	defer func() { _ = os.Remove(backupPath) }()

	staged, err := stageFile(newPath, dir, "."+name+".new-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReplaceFailed, err)
	}
	if err := os.Rename(staged, currentPath); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("%w: failed to rename new binary into place: %w", ErrReplaceFailed, err)
	}

	_ = os.Remove(newPath)
	u.log.WithField("path", currentPath).Info("replaced executable")
	return nil
}

// stageFile copies src into a new executable temp file in dir and returns its path.
func stageFile(src, dir, pattern string) (string, error) {
	// #nosec G304 -- src is a temp file created by DownloadAsset
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open new binary: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to %s staging file: %w", step, err)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	// #nosec G302 -- executable binary requires 0755 permissions
	if err := tmp.Chmod(0o755); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}
	return tmpName, nil
}

func copyFile(src, dst string) error {
	// #nosec G304 -- paths come from os.Executable and our own temp files
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// #nosec G304 -- paths come from os.Executable and our own temp files
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
