package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwlab/fwsetup-cli/internal/archive"
	"github.com/fwlab/fwsetup-cli/internal/bootstrap"
	"github.com/fwlab/fwsetup-cli/internal/config"
	"github.com/fwlab/fwsetup-cli/internal/container"
	"github.com/fwlab/fwsetup-cli/internal/fetch"
	"github.com/fwlab/fwsetup-cli/internal/pyenv"
	"github.com/fwlab/fwsetup-cli/internal/ui"
)

var (
	installAssumeYes bool
	installKeep      bool
	installConfig    string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the full environment bootstrap",
	Long: `Run the full environment bootstrap.

This command:
- Verifies that a container runtime (docker or podman) is on PATH
- Creates a Python virtualenv if none is active (interactive prompt)
- Installs the dependency manifest into the virtualenv
- Downloads the pinned binwalk source release
- Builds the analysis container image from it
- Removes the downloaded archive and extracted sources

It is the same action as running fwsetup with no arguments.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installAssumeYes, "yes", "y", false, "Answer yes to the virtualenv prompt")
	installCmd.Flags().BoolVar(&installKeep, "keep", false, "Keep the downloaded archive and extracted sources")
	installCmd.Flags().StringVar(&installConfig, "config", config.DefaultFile, "Path to the settings file")

	// Bare `fwsetup` runs the same bootstrap, so it takes the same flags.
	rootCmd.Flags().BoolVarP(&installAssumeYes, "yes", "y", false, "Answer yes to the virtualenv prompt")
	rootCmd.Flags().BoolVar(&installKeep, "keep", false, "Keep the downloaded archive and extracted sources")
	rootCmd.Flags().StringVar(&installConfig, "config", config.DefaultFile, "Path to the settings file")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := config.Load(installConfig)
	if err != nil {
		return err
	}

	orch, err := bootstrap.New(settings, bootstrap.Deps{
		LocateRuntime: func() (bootstrap.ContainerRuntime, error) {
			return container.NewClient()
		},
		NewEnv: func(dir string) bootstrap.Environment {
			return pyenv.New(dir)
		},
		Download:  fetch.Download,
		Verify:    fetch.VerifySHA256,
		Extract:   archive.ExtractTarGz,
		Confirm:   ui.AskConfirm,
		LookupEnv: os.LookupEnv,
	}, bootstrap.Options{
		AssumeYes:     installAssumeYes,
		KeepArtifacts: installKeep,
	})
	if err != nil {
		return err
	}

	return orch.Run(ctx)
}
