package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/chromedriver-installer/internal/config"
	"github.com/oshokin/chromedriver-installer/internal/service/installer"
	"github.com/oshokin/chromedriver-installer/internal/version"
)

var (
	// options collects flag values shared by every command.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	options = new(installer.Options)

	// overwriteConfig lets init-config replace an existing file.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	overwriteConfig bool

	// rootCmd installs the driver matching the local browser.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	rootCmd = &cobra.Command{
		Use:   "chromedriver-installer",
		Short: "Install the ChromeDriver matching the local Google Chrome",
		Long: `Detects the installed Google Chrome version, resolves the matching ChromeDriver
release published by Chrome for Testing and installs it next to this program.

An already installed driver reporting the same version is kept unless --force is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			result, err := installer.Run(ctx, options)
			if err != nil {
				return err
			}

			status := "already up to date"
			if result.Downloaded {
				status = "installed"
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ChromeDriver %s for Chrome %s %s: %s\n",
				result.DriverVersion, result.BrowserVersion, status, result.TargetPath)

			return nil
		},
	}

	// browserVersionCmd prints the detected browser version.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	browserVersionCmd = &cobra.Command{
		Use:   "browser-version",
		Short: "Print the installed Google Chrome version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			browserVersion, err := installer.DetectBrowserVersion(ctx, options)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), browserVersion)

			return nil
		},
	}

	// resolveCmd prints the matching driver release without installing it.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	resolveCmd = &cobra.Command{
		Use:   "resolve",
		Short: "Print the matching ChromeDriver release and download URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			resolution, url, err := installer.Resolve(ctx, options)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "chrome: %s\nchromedriver: %s\nplatform: %s\nurl: %s\n",
				resolution.BrowserVersion, resolution.DriverVersion, resolution.Platform, url)

			return nil
		},
	}

	// initConfigCmd writes a configuration file with default values.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	initConfigCmd = &cobra.Command{
		Use:   "init-config",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := options.ConfigPath
			if path == "" {
				path = config.DefaultConfigFilename
			}

			if err := config.WriteDefault(path, overwriteConfig); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "configuration written to", path)

			return nil
		},
	}
)

// Execute runs the CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "",
		"path to configuration file, must exist when set (default: "+config.DefaultConfigFilename+" if present)")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVarP(&options.Platform, "platform", "p", "", "download platform: linux64, mac-arm64, mac-x64, win32 or win64")

	rootCmd.Flags().StringVar(&options.ChromeVersion, "chrome-version", "", "Chrome version to match instead of the detected one")
	rootCmd.Flags().StringVarP(&options.TargetDir, "target-dir", "t", "", "directory to install the driver into")
	rootCmd.Flags().BoolVarP(&options.Force, "force", "f", false, "download even if the installed driver matches")
	rootCmd.Flags().BoolVar(&options.KillRunning, "kill-running", false, "terminate running drivers before replacing the binary")

	resolveCmd.Flags().StringVar(&options.ChromeVersion, "chrome-version", "", "Chrome version to match instead of the detected one")

	initConfigCmd.Flags().BoolVar(&overwriteConfig, "overwrite", false, "replace an existing configuration file")

	rootCmd.AddCommand(browserVersionCmd, resolveCmd, initConfigCmd)
}
