package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List camera sources and their image rotation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tPOSITION\tMODALITY\tROTATION")
		for _, src := range domain.AllCameraSources() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%g°\n", src.Name(), src.Position, src.Modality, src.Position.Angle())
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
