package packager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/logger"
	"github.com/electrolink/storefront/internal/service/installer"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is an optional path to persist deployment settings.
	ConfigPath string
	// UpdateFolder is the URL where release artifacts will be uploaded.
	UpdateFolder string
}

// packager prepares a release manifest for distribution.
// Callers go through Run, which encapsulates setup and validation.
type packager struct {
	// cfg holds the deployment configuration being published.
	cfg *config.Config
	// cfgFilename is the path where configuration is saved.
	cfgFilename string
	// manifest is the release manifest under construction.
	manifest *installer.Manifest
}

// errInstallRunning indicates that a launcher install is in progress.
var errInstallRunning = errors.New("an install is running now")

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "storefront-packager")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.UpdateFolder != "" {
		cfg.UpdateFolder = opts.UpdateFolder
	}

	if err = config.Validate(cfg); err != nil {
		return err
	}

	pkg, err := newPackager(ctx, opts.ConfigPath, cfg)
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	if err = pkg.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// newPackager creates a packager after making sure no install is racing us.
func newPackager(ctx context.Context, configFilename string, cfg *config.Config) (*packager, error) {
	if installer.IsInstallRunningNow(ctx) {
		return nil, errInstallRunning
	}

	if err := config.Save(configFilename, cfg); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	return &packager{
		cfg:         cfg,
		cfgFilename: configFilename,
		manifest:    installer.NewManifest(),
	}, nil
}

// Run populates and writes the release manifest to disk.
func (p *packager) Run(ctx context.Context) error {
	logger.Info(ctx, "Preparing release manifest")

	if err := p.fillManifest(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Saving release manifest", "path", p.cfg.ManifestFile)

	if err := p.saveManifest(); err != nil {
		return err
	}

	p.printNextSteps(ctx)

	return nil
}

// fillManifest records artifacts and their checksums into the manifest.
func (p *packager) fillManifest() error {
	for _, fileName := range installer.DistributableArtifacts() {
		if _, err := os.Stat(fileName); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", fileName, os.ErrNotExist)
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", fileName, err)
		}

		checksum, err := installer.GetFileChecksum(fileName)
		if err != nil {
			return err
		}

		p.manifest.Artifacts = append(p.manifest.Artifacts, fileName)
		p.manifest.Files[fileName] = base64.StdEncoding.EncodeToString(checksum)
	}

	return nil
}

// saveManifest writes the manifest to the configured manifest path.
func (p *packager) saveManifest() error {
	contents, err := yaml.Marshal(p.manifest)
	if err != nil {
		return err
	}

	return os.WriteFile(p.cfg.ManifestFile, contents, installer.DefaultFileMode)
}

// printNextSteps logs human-readable guidance for publishing the release.
func (p *packager) printNextSteps(ctx context.Context) {
	files := make([]string, 0, len(p.manifest.Files)+1)
	for fileName := range p.manifest.Files {
		files = append(files, fileName)
	}

	files = append(files, p.cfg.ManifestFile)
	sort.Strings(files)

	var builder strings.Builder

	builder.WriteString("You should upload the following files to the folder ")
	builder.WriteString(p.cfg.UpdateFolder)
	builder.WriteString(":\n")
	builder.WriteString(strings.Join(files, ",\n"))
	builder.WriteString("\n\nOn the host, set the startup command to: ")
	builder.WriteString(installer.LauncherExecutable())

	logger.Info(ctx, builder.String())
}
