package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fwsetup",
	Short: "fwsetup - Bootstrap the local firmware-analysis environment",
	Long: `fwsetup prepares everything the firmware extraction pipeline needs to run:
it verifies a container runtime, sets up a Python virtualenv, installs the
declared dependencies, downloads the pinned binwalk release and builds the
analysis container image from it.

Running fwsetup with no arguments performs the full bootstrap.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInstall,
}

func Execute() error {
	return rootCmd.Execute()
}
