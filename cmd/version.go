package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden at release time via -ldflags "-X ...cmd.version=".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hirelens version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
