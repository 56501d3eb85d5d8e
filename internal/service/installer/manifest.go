package installer

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"
	"gopkg.in/yaml.v3"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/logger"
	"github.com/electrolink/storefront/internal/version"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

var (
	errHashUnavailable = errors.New("hash function unavailable")
	// ErrManifestMissing is returned when no manifest can be located.
	ErrManifestMissing = errors.New("release manifest not found")
)

const (
	// MarkerFilename marks that an install is running right now to avoid parallel execution.
	MarkerFilename = "storefront-install-marker.bin"

	// DefaultFileMode is used when producing artifacts for distribution.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate artifact hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// Base executable names; platform helpers append extension when needed.
	baseServerExecutable   = "storefront-server"
	baseLauncherExecutable = "storefront-launcher"

	// markerLifetime is the period after which a stale install marker is ignored.
	markerLifetime = 30 * time.Second

	// defaultMapCapacity is the default initial capacity for maps and slices.
	defaultMapCapacity = 16
)

// Manifest describes a published release: which artifacts a deployment
// consists of, their checksums, and which one is the backend entry point.
type Manifest struct {
	// VersionNumber is the semantic version of this release.
	VersionNumber string `yaml:"version"`
	// Installer is the launcher executable name, used for self-upgrade.
	Installer string `yaml:"installer"`
	// Entrypoint is the backend executable started after installation.
	Entrypoint string `yaml:"entrypoint"`
	// Artifacts lists every file of the deployment in install order.
	Artifacts []string `yaml:"artifacts"`
	// Files maps artifact names to their base64-encoded checksums.
	Files map[string]string `yaml:"files"`
}

// NewManifest produces a Manifest initialized with the current build version
// and the platform executable names.
func NewManifest() *Manifest {
	return &Manifest{
		VersionNumber: version.Short(),
		Installer:     LauncherExecutable(),
		Entrypoint:    ServerExecutable(),
		Artifacts:     make([]string, 0, defaultMapCapacity),
		Files:         make(map[string]string, defaultMapCapacity),
	}
}

// ParseManifest decodes manifest YAML and checks the fields the installer relies on.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if m.Entrypoint == "" {
		m.Entrypoint = ServerExecutable()
	}

	if m.Installer == "" {
		m.Installer = LauncherExecutable()
	}

	return &m, nil
}

// DistributableArtifacts returns the files a release ships for this platform.
func DistributableArtifacts() []string {
	return []string{
		LauncherExecutable(),
		ServerExecutable(),
		config.DefaultConfigFilename,
		filepath.Join(config.DefaultDataDir, "products.json"),
		filepath.Join(config.DefaultDataDir, "translations.json"),
	}
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	hash := hasher.Sum(nil)

	return hash, nil
}

// IsInstallRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsInstallRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of an install marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The install marker is too old, attempting cleanup")

		if err = terminateProcessByName(LauncherExecutable()); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Install marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read install marker: %v", err)

	return false
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

// ServerExecutable returns the backend executable name for this platform.
func ServerExecutable() string {
	return baseServerExecutable + getExecutableExtension()
}

// LauncherExecutable returns the launcher executable name for this platform.
func LauncherExecutable() string {
	return baseLauncherExecutable + getExecutableExtension()
}
