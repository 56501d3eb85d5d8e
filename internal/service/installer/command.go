package installer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
	goversion "github.com/hashicorp/go-version"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/logger"
	"github.com/electrolink/storefront/internal/version"
)

var (
	errSettingsNotInitialised = errors.New("settings are not initialized")
	errEmptyManifest          = errors.New("manifest is not loaded")
	errNoChecksum             = errors.New("checksum missing for artifact")
	errNoUpdateFolder         = errors.New("update folder is not configured")
	errBadHTTPStatus          = errors.New("unexpected http status")
)

// Installer synchronizes local deployment artifacts with a release manifest.
// It performs the two preparation steps of a launch: self-upgrade of the
// launcher and installation of the dependency artifacts.
type Installer struct {
	// cfg is the deployment configuration loaded from YAML.
	cfg *config.Config
	// manifest is the release description, local or fetched from the update folder.
	manifest *Manifest
	// temporaryDirectory is where new artifacts are downloaded before apply.
	temporaryDirectory string
	// downloaded maps artifact name to local temp path.
	downloaded map[string]string
}

// New creates an installer bound to the provided configuration.
func New(cfg *config.Config) (*Installer, error) {
	if cfg == nil {
		return nil, errSettingsNotInitialised
	}

	return &Installer{
		cfg:        cfg,
		downloaded: make(map[string]string, defaultMapCapacity),
	}, nil
}

// Manifest returns the loaded release manifest, or nil before LoadManifest.
func (i *Installer) Manifest() *Manifest {
	return i.manifest
}

// LoadManifest reads the release manifest: a local manifest file wins,
// otherwise the manifest is fetched from the update folder.
func (i *Installer) LoadManifest(ctx context.Context) error {
	data, err := os.ReadFile(filepath.Clean(i.cfg.ManifestFile))

	switch {
	case err == nil:
		logger.InfoKV(ctx, "Using local release manifest", "path", i.cfg.ManifestFile)
	case errors.Is(err, os.ErrNotExist):
		if i.cfg.UpdateFolder == "" {
			return fmt.Errorf("%s: %w", i.cfg.ManifestFile, ErrManifestMissing)
		}

		logger.InfoKV(ctx, "Downloading release manifest", "folder", i.cfg.UpdateFolder)

		data, err = i.fetchFile(ctx, path.Base(i.cfg.ManifestFile))
		if err != nil {
			return fmt.Errorf("download manifest: %w", err)
		}
	default:
		return fmt.Errorf("read manifest: %w", err)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return err
	}

	i.manifest = manifest

	return nil
}

// UpgradeSelf replaces the running launcher executable when the manifest
// publishes a newer version. The new binary takes effect on the next run.
// Returns true when an upgrade was applied.
func (i *Installer) UpgradeSelf(ctx context.Context) (bool, error) {
	if i.manifest == nil {
		return false, errEmptyManifest
	}

	needed, err := upgradeNeeded(ctx, version.Short(), i.manifest.VersionNumber)
	if err != nil {
		return false, err
	}

	if !needed {
		logger.InfoKV(ctx, "Launcher is current", "version", version.Short())
		return false, nil
	}

	if i.cfg.UpdateFolder == "" {
		logger.Warn(ctx, "Newer launcher published but no update folder configured, skipping self-upgrade")
		return false, nil
	}

	executablePath, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("locate own executable: %w", err)
	}

	data, err := i.fetchFile(ctx, i.manifest.Installer)
	if err != nil {
		return false, fmt.Errorf("download launcher: %w", err)
	}

	checksum, err := i.artifactChecksum(i.manifest.Installer)
	if err != nil {
		return false, err
	}

	options := goupdate.Options{
		TargetPath: executablePath,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return false, fmt.Errorf("apply launcher upgrade: %w", err)
	}

	removeBackup(executablePath)

	logger.InfoKV(ctx, "Launcher upgraded, effective on next run",
		"from", version.Short(), "to", i.manifest.VersionNumber)

	return true, nil
}

// InstallArtifacts brings every manifest artifact up to the published
// checksum. Artifacts that already match are left untouched, so a repeated
// run over an installed tree performs no writes. Returns how many artifacts
// were written.
func (i *Installer) InstallArtifacts(ctx context.Context) (int, error) {
	if i.manifest == nil {
		return 0, errEmptyManifest
	}

	stale, err := i.staleArtifacts(ctx)
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		logger.Info(ctx, "All artifacts are current, nothing to install")
		return 0, nil
	}

	if i.cfg.UpdateFolder == "" {
		return 0, fmt.Errorf("%d artifacts out of date: %w", len(stale), errNoUpdateFolder)
	}

	logger.InfoKV(ctx, "Downloading artifacts to a temporary folder", "count", len(stale))

	if err = i.downloadArtifacts(ctx, stale); err != nil {
		return 0, fmt.Errorf("download artifacts: %w", err)
	}

	logger.Info(ctx, "Applying downloaded artifacts")

	if err = i.applyArtifacts(ctx); err != nil {
		return 0, fmt.Errorf("apply artifacts: %w", err)
	}

	return len(stale), nil
}

// Cleanup removes the temporary download directory.
func (i *Installer) Cleanup(ctx context.Context) {
	if i.temporaryDirectory == "" {
		return
	}

	if _, err := os.Stat(i.temporaryDirectory); err == nil {
		if err = os.RemoveAll(i.temporaryDirectory); err != nil {
			logger.Warnf(ctx, "Unable to remove temporary directory: %v", err)
		}
	}

	i.temporaryDirectory = ""
}

// upgradeNeeded compares local and published versions semantically.
// An unparsable local version counts as outdated; an unparsable published
// version is an error because the manifest is then unusable.
func upgradeNeeded(ctx context.Context, local, published string) (bool, error) {
	publishedVersion, err := goversion.NewVersion(published)
	if err != nil {
		return false, fmt.Errorf("parse published version %q: %w", published, err)
	}

	localVersion, err := goversion.NewVersion(local)
	if err != nil {
		logger.Warnf(ctx, "Unable to parse local version %q, assuming upgrade is needed", local)
		return true, nil
	}

	return localVersion.LessThan(publishedVersion), nil
}

// staleArtifacts returns manifest artifacts whose local checksum differs.
func (i *Installer) staleArtifacts(ctx context.Context) ([]string, error) {
	stale := make([]string, 0, len(i.manifest.Artifacts))

	for _, name := range i.manifest.Artifacts {
		needsUpdate, err := i.artifactNeedsUpdate(name)
		if err != nil {
			return nil, err
		}

		if needsUpdate {
			logger.DebugKV(ctx, "Artifact out of date", "artifact", name)

			stale = append(stale, name)
		}
	}

	return stale, nil
}

// artifactNeedsUpdate compares the local file checksum against the manifest.
func (i *Installer) artifactNeedsUpdate(name string) (bool, error) {
	published, err := i.artifactChecksum(name)
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, err
	}

	local, err := GetFileChecksum(name)
	if err != nil {
		return false, err
	}

	return !bytes.Equal(published, local), nil
}

// artifactChecksum retrieves and decodes the manifest checksum for an artifact.
func (i *Installer) artifactChecksum(name string) ([]byte, error) {
	encoded, ok := i.manifest.Files[name]
	if !ok {
		return nil, fmt.Errorf("checksum for %s: %w", name, errNoChecksum)
	}

	checksum, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode checksum for %s: %w", name, err)
	}

	return checksum, nil
}

// downloadArtifacts fetches the stale artifacts into a temporary directory.
func (i *Installer) downloadArtifacts(ctx context.Context, names []string) error {
	temporaryDirectory, err := os.MkdirTemp("", "storefront-installer-")
	if err != nil {
		return err
	}

	i.temporaryDirectory = temporaryDirectory

	for _, name := range names {
		data, err := i.fetchFile(ctx, name)
		if err != nil {
			return err
		}

		// Artifacts may live in subdirectories (data files).
		outputFileName := filepath.Clean(filepath.Join(temporaryDirectory, name))
		if err = os.MkdirAll(filepath.Dir(outputFileName), DefaultFileMode); err != nil {
			return err
		}

		if err = os.WriteFile(outputFileName, data, DefaultFileMode); err != nil {
			return err
		}

		i.downloaded[name] = outputFileName
		logger.InfoKV(ctx, "Downloaded artifact", "path", outputFileName)
	}

	return nil
}

// applyArtifacts installs downloaded artifacts in place with checksum validation.
func (i *Installer) applyArtifacts(ctx context.Context) error {
	for name, downloadedFileName := range i.downloaded {
		logger.InfoKV(ctx, "Installing artifact", "artifact", name)

		data, err := os.ReadFile(downloadedFileName)
		if err != nil {
			return err
		}

		checksum, err := i.artifactChecksum(name)
		if err != nil {
			return err
		}

		if err = os.MkdirAll(filepath.Dir(name), DefaultFileMode); err != nil {
			return err
		}

		if _, err = os.Stat(name); err != nil && os.IsNotExist(err) {
			if _, err = os.Create(name); err != nil {
				return err
			}
		}

		options := goupdate.Options{
			TargetPath: name,
			TargetMode: DefaultFileMode,
			Checksum:   checksum,
			Hash:       DefaultChecksumFunction,
		}

		if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}

		removeBackup(name)
	}

	return nil
}

// fetchFile downloads a file from the update folder.
func (i *Installer) fetchFile(ctx context.Context, fileName string) ([]byte, error) {
	folderURL, err := url.Parse(i.cfg.UpdateFolder)
	if err != nil {
		return nil, err
	}

	// Use path.Join to normalize duplicate slashes when composing the URL path.
	folderURL.Path = path.Join(folderURL.Path, fileName)
	finalURL := folderURL.String()

	requestCtx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return io.ReadAll(response.Body)
}

// removeBackup deletes the .old file go-update leaves next to the target.
func removeBackup(target string) {
	oldFileName := target + ".old"
	if _, err := os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}
}
