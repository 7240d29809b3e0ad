package main

import (
	"github.com/aretw0/strider"
	"github.com/aretw0/strider/internal/cli"
	"github.com/spf13/cobra"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts [dir]",
	Short: "List images saved by capture missions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := strider.DefaultMission().OutputDir
		if len(args) == 1 {
			dir = args[0]
		}
		return cli.Artifacts(cmd.Context(), cli.ArtifactsOptions{Dir: dir, Out: cmd.OutOrStdout()})
	},
}

func init() {
	rootCmd.AddCommand(artifactsCmd)
}
