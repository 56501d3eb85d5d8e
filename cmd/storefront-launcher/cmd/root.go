package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/electrolink/storefront/internal/config"
	"github.com/electrolink/storefront/internal/service/launcher"
	"github.com/electrolink/storefront/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// manifestPath overrides the release manifest named by the settings.
	manifestPath string

	// rootCmd represents the base command for running the deployment sequence.
	rootCmd = &cobra.Command{
		Use:   "storefront-launcher [-- backend-args...]",
		Short: "Install the storefront release and start the backend.",
		Long: `Deployment wrapper for the storefront backend.

Runs the launch sequence in fixed order: read the release manifest,
self-upgrade the launcher, install dependency artifacts, then start the
backend entry point. The first failing step aborts the launch, and the
launcher exits with the backend's own exit code once it stops.

Arguments after -- are passed through to the backend process.
Restarting a crashed backend is left to the hosting platform.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &launcher.Options{
				ConfigPath:   configPath,
				ManifestPath: manifestPath,
				BackendArgs:  args,
			}

			return launcher.Run(ctx, options)
		},
	}
)

// Execute runs the storefront-launcher CLI. The process exit status is the
// backend's own exit code when the backend ran and failed.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(launcher.ExitCode(err))
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to a release manifest override")
}
