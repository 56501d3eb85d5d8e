package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/service/installer"
	"github.com/electrolink/storefront/internal/version"
)

// seedArtifacts creates every distributable file in the working directory.
func seedArtifacts(t *testing.T) {
	t.Helper()

	require.NoError(t, os.MkdirAll(config.DefaultDataDir, 0o755))
	require.NoError(t, os.WriteFile(installer.LauncherExecutable(), []byte("launcher"), 0o755))
	require.NoError(t, os.WriteFile(installer.ServerExecutable(), []byte("server"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(config.DefaultDataDir, "products.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(config.DefaultDataDir, "translations.json"), []byte("{}"), 0o644))
}

// TestRun_WritesManifest produces a parseable manifest covering every artifact.
func TestRun_WritesManifest(t *testing.T) {
	t.Chdir(t.TempDir())
	seedArtifacts(t)

	err := Run(context.Background(), &Options{
		UpdateFolder: "https://updates.example.com/storefront",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(config.DefaultManifestFilename)
	require.NoError(t, err)

	manifest, err := installer.ParseManifest(data)
	require.NoError(t, err)
	require.Equal(t, version.Short(), manifest.VersionNumber)
	require.Equal(t, installer.ServerExecutable(), manifest.Entrypoint)
	require.Equal(t, installer.DistributableArtifacts(), manifest.Artifacts)

	for _, name := range manifest.Artifacts {
		require.NotEmpty(t, manifest.Files[name], name)
	}

	// Settings were persisted with the published update folder.
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "https://updates.example.com/storefront", cfg.UpdateFolder)
}

// TestRun_MissingArtifactFails refuses to publish an incomplete release.
func TestRun_MissingArtifactFails(t *testing.T) {
	t.Chdir(t.TempDir())
	seedArtifacts(t)
	require.NoError(t, os.Remove(installer.ServerExecutable()))

	err := Run(context.Background(), &Options{
		UpdateFolder: "https://updates.example.com/storefront",
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRun_RefusesDuringInstall respects a fresh install marker.
func TestRun_RefusesDuringInstall(t *testing.T) {
	t.Chdir(t.TempDir())
	seedArtifacts(t)
	require.NoError(t, os.WriteFile(installer.MarkerFilename, nil, 0o644))

	err := Run(context.Background(), &Options{
		UpdateFolder: "https://updates.example.com/storefront",
	})
	require.ErrorIs(t, err, errInstallRunning)
}
