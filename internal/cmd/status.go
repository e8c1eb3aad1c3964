package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwlab/fwsetup-cli/internal/config"
	"github.com/fwlab/fwsetup-cli/internal/container"
	"github.com/fwlab/fwsetup-cli/internal/pyenv"
)

var statusConfig string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the analysis environment",
	Long: `Show the state of the analysis environment.

Reports whether a container runtime is available, whether a virtualenv is
active or present, and whether the analysis image has been built.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusConfig, "config", config.DefaultFile, "Path to the settings file")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := config.Load(statusConfig)
	if err != nil {
		return err
	}

	fmt.Println("🔍 Environment status")
	fmt.Println()

	client, err := container.NewClient()
	if err != nil {
		fmt.Printf("❌ Container runtime: not found\n")
	} else {
		version, verr := client.Version(ctx)
		if verr != nil {
			version = "version unknown"
		}
		fmt.Printf("✅ Container runtime: %s (%s)\n", client.Name(), version)

		if client.ImageExists(ctx, settings.Image.Tag) {
			fmt.Printf("✅ Image %q: built\n", settings.Image.Tag)
		} else {
			fmt.Printf("❌ Image %q: not built\n", settings.Image.Tag)
		}
	}

	if pyenv.IsActive(os.LookupEnv) {
		dir, _ := os.LookupEnv(pyenv.Marker)
		fmt.Printf("✅ Virtualenv: active (%s)\n", dir)
	} else if pyenv.New(settings.Python.VenvDir).Exists() {
		fmt.Printf("⚠️  Virtualenv: present at %s but not active\n", settings.Python.VenvDir)
	} else {
		fmt.Printf("❌ Virtualenv: none\n")
	}

	return nil
}
