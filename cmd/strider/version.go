package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/strider"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of strider",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "strider version %s\n", strings.TrimSpace(strider.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
