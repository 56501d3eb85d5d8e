package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds deployment parameters shared by the storefront binaries.
type Config struct {
	// ListenAddress is the address the backend HTTP server binds to.
	ListenAddress string `yaml:"listen_addr"`
	// UpdateFolder is the URL where release artifacts and the manifest are hosted.
	UpdateFolder string `yaml:"update_folder"`
	// ManifestFile is the name of the release manifest within the update folder.
	ManifestFile string `yaml:"manifest_file"`
	// DataDir is the directory holding products.json and translations.json.
	DataDir string `yaml:"data_dir"`
	// StaticDir is the directory served under /static.
	StaticDir string `yaml:"static_dir"`
	// TemplatesDir is the directory with HTML page templates.
	// Page routes are disabled when it does not exist.
	TemplatesDir string `yaml:"templates_dir"`
	// Timeout is the duration for network operations (downloads, shutdown drain).
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for deployment settings.
	DefaultConfigFilename = "storefront-settings.yaml"

	// DefaultManifestFilename is the default name of the release manifest.
	DefaultManifestFilename = "storefront-manifest.yaml"

	// DefaultListenAddress is the port the frontend expects the backend on.
	DefaultListenAddress = ":5000"

	// DefaultDataDir is the default directory for catalog JSON files.
	DefaultDataDir = "data"

	// DefaultStaticDir is the default directory served under /static.
	DefaultStaticDir = "static"

	// DefaultTemplatesDir is the default directory with HTML templates.
	DefaultTemplatesDir = "templates"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errListenAddressRequired is returned when the listen address is missing.
	errListenAddressRequired = errors.New("listen address must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: the defaults describe a complete local deployment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Default returns a configuration describing a local deployment next to the binaries.
func Default() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		ManifestFile:  DefaultManifestFilename,
		DataDir:       DefaultDataDir,
		StaticDir:     DefaultStaticDir,
		TemplatesDir:  DefaultTemplatesDir,
		Timeout:       DefaultTimeout,
	}
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for fields that may be omitted.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		return errListenAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.ManifestFile == "" {
		cfg.ManifestFile = DefaultManifestFilename
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}

	if cfg.StaticDir == "" {
		cfg.StaticDir = DefaultStaticDir
	}

	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = DefaultTemplatesDir
	}

	if cfg.UpdateFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.UpdateFolder); err != nil {
		return fmt.Errorf("invalid update folder URI: %w", err)
	}

	return nil
}
