package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/logger"
	"github.com/electrolink/storefront/internal/service/common"
	"github.com/electrolink/storefront/internal/service/installer"
)

// Options are inputs accepted by the launcher entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ManifestPath overrides the manifest file named by the settings.
	ManifestPath string
	// BackendArgs are passed through to the backend process.
	BackendArgs []string
}

// errLauncherAlreadyRunning indicates another launcher holds the install marker.
var errLauncherAlreadyRunning = errors.New("another launcher is already running")

// Run executes the launch sequence and is the public entry point for the CLI:
// upgrade the launcher, install the dependency artifacts, start the backend.
// Each step runs only after the previous one succeeded; the first failure
// aborts the launch and surfaces as the process exit status.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "storefront-launcher")

	run, err := newRun(ctx, opts)
	if err != nil {
		// Setup may have claimed the marker before failing.
		if run != nil {
			run.cleanup(ctx)
		}

		return err
	}

	defer run.cleanup(ctx)

	if err = run.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Launch failed", "error", err)
		return err
	}

	return nil
}

// ExitCode maps a Run error to the launcher process exit status.
// A backend that exited on its own propagates its code unchanged.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return 1
}

// run holds the state of a single launch.
type run struct {
	// cfg is the deployment configuration.
	cfg *config.Config
	// inst synchronizes artifacts against the release manifest.
	inst *installer.Installer
	// backendArgs are passed through to the backend process.
	backendArgs []string
	// markerOwned records whether this run created the install marker.
	markerOwned bool
}

// newRun loads configuration and claims the install marker so that two
// launchers never install over each other.
func newRun(ctx context.Context, opts *Options) (*run, error) {
	// A foreign marker means another launcher is installing; do not touch it.
	if installer.IsInstallRunningNow(ctx) {
		return nil, errLauncherAlreadyRunning
	}

	marker, err := os.Create(installer.MarkerFilename)
	if err != nil {
		return nil, fmt.Errorf("create install marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, fmt.Errorf("close install marker: %w", err)
	}

	r := &run{
		markerOwned: true,
		backendArgs: opts.BackendArgs,
	}

	r.cfg, err = config.Load(opts.ConfigPath)
	if err != nil {
		return r, err
	}

	if opts.ManifestPath != "" {
		r.cfg.ManifestFile = opts.ManifestPath
	}

	r.inst, err = installer.New(r.cfg)
	if err != nil {
		return r, err
	}

	if actor, actorErr := common.DetectActor(); actorErr == nil {
		logger.InfoKV(ctx, "Deployment started", "actor", actor.String())
	}

	return r, nil
}

// Run executes the launch steps in order:
// 1) Read the release manifest.
// 2) Self-upgrade the launcher.
// 3) Install dependency artifacts.
// 4) Start the backend and wait for it.
func (r *run) Run(ctx context.Context) error {
	logger.Info(ctx, "Reading the release manifest")

	if err := r.inst.LoadManifest(ctx); err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	logger.Info(ctx, "Upgrading the launcher")

	if _, err := r.inst.UpgradeSelf(ctx); err != nil {
		return fmt.Errorf("upgrade launcher: %w", err)
	}

	logger.Info(ctx, "Installing dependency artifacts")

	if _, err := r.inst.InstallArtifacts(ctx); err != nil {
		return fmt.Errorf("install dependencies: %w", err)
	}

	// The marker protects the install phase only; the backend may run for
	// days and must not look like an in-progress install to the next launcher.
	r.releaseMarker(ctx)

	logger.InfoKV(ctx, "Starting the backend", "entrypoint", r.inst.Manifest().Entrypoint)

	return r.launchBackend(ctx)
}

// launchBackend starts the backend entry point and waits for it to exit.
// Its output streams through so the hosting platform captures backend logs,
// and its exit status becomes the launcher's own.
func (r *run) launchBackend(ctx context.Context) error {
	entrypoint := resolveEntrypoint(r.inst.Manifest().Entrypoint)

	cmd := exec.CommandContext(ctx, entrypoint, r.backendArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("backend %s: %w", entrypoint, err)
	}

	return nil
}

// resolveEntrypoint prefers the freshly installed executable in the working
// directory over anything on PATH.
func resolveEntrypoint(name string) string {
	if _, err := os.Stat(name); err != nil {
		return name
	}

	absolute, err := filepath.Abs(name)
	if err != nil {
		return name
	}

	return absolute
}

// releaseMarker removes the install marker if this run created it.
func (r *run) releaseMarker(ctx context.Context) {
	if !r.markerOwned {
		return
	}

	if err := os.Remove(installer.MarkerFilename); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "Unable to remove install marker: %v", err)
	}

	r.markerOwned = false
}

// cleanup removes temporary artifacts and the install marker.
func (r *run) cleanup(ctx context.Context) {
	r.releaseMarker(ctx)

	if r.inst != nil {
		r.inst.Cleanup(ctx)
	}

	logger.Info(ctx, "The launcher has finished")
}
