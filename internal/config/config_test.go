package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing listen address.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Bad listen address.
	cfg = &Config{
		ListenAddress: "bad:address",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Bad update folder.
	cfg = &Config{
		ListenAddress: "127.0.0.1:0",
		UpdateFolder:  "::not-a-url",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay with update folder; omitted fields pick up defaults.
	cfg = &Config{
		ListenAddress: "127.0.0.1:0",
		UpdateFolder:  "https://example.com/releases",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultManifestFilename, cfg.ManifestFile)
	require.Equal(t, DefaultDataDir, cfg.DataDir)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestLoad_MissingFileYieldsDefaults ensures a nonexistent settings file is not fatal.
func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, DefaultStaticDir, cfg.StaticDir)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ListenAddress: "127.0.0.1:5000",
		UpdateFolder:  "https://updates.local/",
		DataDir:       filepath.Join(dir, "data"),
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, loaded.ListenAddress)
	require.Equal(t, cfg.UpdateFolder, loaded.UpdateFolder)
	require.Equal(t, cfg.DataDir, loaded.DataDir)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}
