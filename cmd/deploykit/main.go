package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"deploykit/internal/app"
	"deploykit/internal/assets"
	deployerrors "deploykit/internal/errors"
	"deploykit/internal/installer"
	"deploykit/internal/migrator"
	"deploykit/internal/parser"
	"deploykit/pkg/manifest"
	"deploykit/pkg/runtime"
)

// version is set at build time via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "deploykit",
	Short:   "DeployKit - Ordered, fail-fast environment provisioning tool",
	Version: version,
	Long: `DeployKit prepares a runtime environment for an application by installing
dependencies, collecting static assets, and applying outstanding schema
migrations - in that fixed order, aborting on the first failure.`,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run the complete provisioning sequence",
	Long: `Up executes the complete provisioning sequence from a deployment manifest:
installing dependencies, collecting static assets, and applying schema
migrations. Steps run strictly in order; the first failing step aborts the run
and no later step is invoked.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			fmt.Fprintln(os.Stderr, "Error: --file flag is required")
			os.Exit(1)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		report, _ := cmd.Flags().GetBool("report")

		if err := app.Up(file, dryRun, report); err != nil {
			deployerrors.HandleError(err)
			os.Exit(1)
		}
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install application dependencies",
	Long: `Install runs only the install-dependencies step: the package manager
declared in the manifest resolves and installs the dependency manifest.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			fmt.Fprintln(os.Stderr, "Error: --file flag is required")
			os.Exit(1)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")

		m, runner, err := loadManifestAndRunner(file, dryRun)
		if err != nil {
			deployerrors.HandleError(err)
			os.Exit(1)
		}

		fmt.Printf("Installing dependencies for: %s\n", m.Metadata.Name)

		if err := installer.New(runner).Install(context.Background(), &m.Spec, dryRun); err != nil {
			deployerrors.HandleError(err)
			os.Exit(1)
		}

		fmt.Printf("Dependencies installed via %s\n", m.Spec.Dependencies.Manager)
	},
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect static assets to the serving location",
	Long: `Collect runs only the collect-static-assets step: assets are copied from
the configured source (a local directory or a git repository) to the serving
destination, together with an inventory of the published files.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			fmt.Fprintln(os.Stderr, "Error: --file flag is required")
			os.Exit(1)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")

		m, err := parser.Parse(file)
		if err != nil {
			deployerrors.HandleError(err)
			os.Exit(1)
		}

		fmt.Printf("Collecting static assets for: %s\n", m.Metadata.Name)

		if err := assets.Collect(context.Background(), &m.Spec.Assets, dryRun); err != nil {
			deployerrors.HandleError(err)
			os.Exit(1)
		}

		if dryRun {
			fmt.Println("Dry run completed successfully.")
		} else {
			fmt.Printf("Static assets collected to: %s\n", m.Spec.Assets.Destination)
		}
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply outstanding schema migrations",
	Long: `Migrate runs only the apply-migrations step: the configured migration
engine applies outstanding migrations to the persistent store. Already-applied
migrations are a no-op on the engine's side.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			fmt.Fprintln(os.Stderr, "Error: --file flag is required")
			os.Exit(1)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")

		m, runner, err := loadManifestAndRunner(file, dryRun)
		if err != nil {
			deployerrors.HandleError(err)
			os.Exit(1)
		}

		fmt.Printf("Applying schema migrations for: %s\n", m.Metadata.Name)

		if err := migrator.New(runner).Apply(context.Background(), &m.Spec, dryRun); err != nil {
			deployerrors.HandleError(err)
			os.Exit(1)
		}

		fmt.Printf("Schema migrations applied via %s\n", m.Spec.Migrations.Engine)
	},
}

// loadManifestAndRunner parses the manifest and builds its execution runtime.
// Dry runs never touch the runtime, so none is constructed for them.
func loadManifestAndRunner(file string, dryRun bool) (*manifest.Manifest, runtime.Runner, error) {
	parsed, err := parser.Parse(file)
	if err != nil {
		return nil, nil, err
	}

	if dryRun {
		return parsed, nil, nil
	}

	r, err := app.NewRunner(parsed.Spec.Runtime.Kind)
	if err != nil {
		return nil, nil, err
	}

	return parsed, r, nil
}

func init() {
	upCmd.Flags().StringP("file", "f", "", "Path to the deployment manifest YAML file (required)")
	upCmd.Flags().Bool("dry-run", false, "Simulate the sequence without making any changes")
	upCmd.Flags().Bool("report", false, "Write a JSON run report after the sequence finishes")
	if err := upCmd.MarkFlagRequired("file"); err != nil {
		slog.Error("Failed to mark file flag as required for up command", "error", err)
	}
	rootCmd.AddCommand(upCmd)

	installCmd.Flags().StringP("file", "f", "", "Path to the deployment manifest YAML file (required)")
	installCmd.Flags().Bool("dry-run", false, "Print the install command without running it")
	if err := installCmd.MarkFlagRequired("file"); err != nil {
		slog.Error("Failed to mark file flag as required for install command", "error", err)
	}
	rootCmd.AddCommand(installCmd)

	collectCmd.Flags().StringP("file", "f", "", "Path to the deployment manifest YAML file (required)")
	collectCmd.Flags().Bool("dry-run", false, "Print files that would be collected without writing them")
	if err := collectCmd.MarkFlagRequired("file"); err != nil {
		slog.Error("Failed to mark file flag as required for collect command", "error", err)
	}
	rootCmd.AddCommand(collectCmd)

	migrateCmd.Flags().StringP("file", "f", "", "Path to the deployment manifest YAML file (required)")
	migrateCmd.Flags().Bool("dry-run", false, "Print the migration command without running it")
	if err := migrateCmd.MarkFlagRequired("file"); err != nil {
		slog.Error("Failed to mark file flag as required for migrate command", "error", err)
	}
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		deployerrors.HandleError(err)
		os.Exit(1)
	}
}
