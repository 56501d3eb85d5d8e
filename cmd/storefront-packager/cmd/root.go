package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/service/packager"
	"github.com/electrolink/storefront/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for building a release manifest.
	rootCmd = &cobra.Command{
		Use:   "storefront-packager <update-folder>",
		Short: "Build a release manifest for the storefront distribution.",
		Long: `Prepares a storefront release for publishing.

Computes checksums for every distributable artifact in the current directory,
writes the release manifest, and records the update folder URL in the settings
file so launchers know where to download updates from. Upload the manifest and
the artifacts to the update folder afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath:   configPath,
				UpdateFolder: args[0],
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the storefront-packager CLI and exits with non-zero status on error.
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
}
