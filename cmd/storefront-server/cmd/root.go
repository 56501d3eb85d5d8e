package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/service/server"
	"github.com/electrolink/storefront/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// dataDir overrides the catalog data directory.
	dataDir string

	// rootCmd represents the base command for running the HTTP backend.
	rootCmd = &cobra.Command{
		Use:   "storefront-server [listen-address]",
		Short: "Run the storefront HTTP backend.",
		Long: `Starts the storefront backend serving the catalog API and pages.

The server listens on the configured address or the one passed as argument
(e.g. :5000, 0.0.0.0:8080). Catalog data is read from JSON files in the data
directory; static assets and HTML templates are served when their directories
exist. The server drains in-flight requests on SIGINT/SIGTERM.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				DataDir:       dataDir,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the storefront-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "path to the catalog data directory")
}
