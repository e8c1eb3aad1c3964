package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwlab/fwsetup-cli/internal/config"
	"github.com/fwlab/fwsetup-cli/internal/container"
	"github.com/fwlab/fwsetup-cli/internal/ui"
)

var (
	cleanImage  bool
	cleanConfig string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove leftover build artifacts",
	Long: `Remove build artifacts left behind by an aborted bootstrap:
the downloaded source archive and the extracted source directory.

Use --image to also remove the analysis container image (with confirmation).`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanImage, "image", false, "Also remove the analysis container image")
	cleanCmd.Flags().StringVar(&cleanConfig, "config", config.DefaultFile, "Path to the settings file")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := config.Load(cleanConfig)
	if err != nil {
		return err
	}

	artifacts := []string{settings.SourceDir(), settings.ArchiveName()}
	for _, artifact := range artifacts {
		if _, err := os.Stat(artifact); err == nil {
			fmt.Printf("🗑️  Removing %s...\n", artifact)
			if err := os.RemoveAll(artifact); err != nil {
				return fmt.Errorf("failed to remove %s: %w", artifact, err)
			}
		}
	}

	if cleanImage {
		client, err := container.NewClient()
		if err != nil {
			return err
		}

		if !client.ImageExists(ctx, settings.Image.Tag) {
			fmt.Printf("Image %q is not in the local store, nothing to remove\n", settings.Image.Tag)
		} else {
			ok, err := ui.AskConfirm(
				fmt.Sprintf("Remove image %q from the local store?", settings.Image.Tag), false)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if !ok {
				fmt.Println("Cancelled.")
				return nil
			}

			fmt.Printf("🗑️  Removing image %s...\n", settings.Image.Tag)
			if err := client.RemoveImage(ctx, settings.Image.Tag); err != nil {
				return err
			}
		}
	}

	fmt.Println("✅ Clean completed successfully")
	return nil
}
